// Package app assembles the mentorship hub from configuration. Both binaries
// build an App and then start the parts they serve.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alem-hub/mentorship-hub/config"
	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/application/query"
	"github.com/alem-hub/mentorship-hub/internal/application/scheduling"
	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/metrics"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/alem-hub/mentorship-hub/internal/interface/http"
	"github.com/alem-hub/mentorship-hub/internal/interface/http/handlers"
	"github.com/alem-hub/mentorship-hub/pkg/circuitbreaker"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// App holds the shared infrastructure and the application layer.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Clock   timeutil.Clock
	Metrics *metrics.Metrics

	// Exactly one of DB and Memory is set.
	DB     *postgres.Connection
	Memory *memory.Store

	// Cache is nil when Redis is disabled or unreachable.
	Cache *redis.Cache

	Sessions session.Repository
	Slots    availability.Repository
	Requests mentorship.Repository
	Users    user.Repository
	Tx       session.Transactor
	Engine   *scheduling.Engine

	Breaker  *circuitbreaker.CircuitBreaker
	Notifier notification.Notifier

	queue *messaging.Queue
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	Clock  timeutil.Clock
	Sender notification.Sender
}

// NewLogger builds the process logger from the observability settings.
func NewLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = logger.LevelDebug
	}
	return logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     level,
		AddCaller: cfg.IsDevelopment(),
		Console:   cfg.Observability.LogFormat == "console",
	}).With(
		logger.String("service", cfg.App.Name),
		logger.String("version", cfg.App.Version),
	)
}

// New connects to the configured stores and wires the application layer.
// On error, everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (_ *App, err error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.SystemClock{}
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Clock:   opts.Clock,
		Metrics: metrics.New(cfg.Observability.RuntimeMetrics),
	}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	a.openCache()
	if a.Cache != nil && cfg.Features.IsEnabled(config.FeatureSlotCache) {
		a.Slots = redis.NewSlotCache(a.Slots, a.Cache, cfg.Redis.SlotCacheTTL, log)
	}

	a.Engine = scheduling.NewEngine(a.Sessions, a.Slots, a.Clock)

	// ─────────────────────────────────────────────────────────────────────────
	// NOTIFICATIONS
	// ─────────────────────────────────────────────────────────────────────────
	a.wireNotifier(opts.Sender)

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg, log := a.Config, a.Log

	if !cfg.Database.Enabled() {
		log.Warn("no database configured, using the in-memory store")
		store := memory.NewStore()
		for _, u := range cfg.SeedUsers {
			role, _ := shared.ParseRole(u.Role)
			store.PutUser(&user.User{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      role,
				Timezone:  u.Timezone,
				CreatedAt: a.Clock.Now(),
			})
		}
		a.Memory = store
		a.Sessions = store.Sessions()
		a.Slots = store.Slots()
		a.Requests = store.Requests()
		a.Users = store.Users()
		a.Tx = store
		return nil
	}

	db := cfg.Database
	log.Info("connecting to database...")
	conn, err := postgres.NewConnection(ctx, PostgresConfig(db), log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = conn
	log.Info("database connection established")

	if db.AutoMigrate {
		applied, err := postgres.NewMigrator(conn).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed", logger.Int("applied", applied))
	}

	a.Sessions = postgres.NewSessionRepository(conn)
	a.Slots = postgres.NewSlotRepository(conn)
	a.Requests = postgres.NewRequestRepository(conn)
	a.Users = postgres.NewUserRepository(conn)
	a.Tx = postgres.NewTransactor(conn, uint(db.TxAttempts))
	return nil
}

// PostgresConfig maps the database settings onto the pool configuration.
func PostgresConfig(db config.DatabaseConfig) postgres.Config {
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = db.URL
	if db.Host != "" {
		pgCfg.Host = db.Host
	}
	if db.Port != 0 {
		pgCfg.Port = db.Port
	}
	if db.Name != "" {
		pgCfg.Database = db.Name
	}
	if db.User != "" {
		pgCfg.User = db.User
	}
	pgCfg.Password = db.Password
	pgCfg.SSLMode = db.SSLMode
	pgCfg.MaxConns = int32(db.MaxConns)
	pgCfg.MinConns = int32(db.MinConns)
	pgCfg.MaxConnLifetime = db.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = db.ConnMaxIdleTime
	pgCfg.ConnectTimeout = db.ConnectTimeout
	pgCfg.ConnectAttempts = uint(db.ConnectAttempts)
	return pgCfg
}

func (a *App) openCache() {
	cfg, log := a.Config.Redis, a.Log
	if cfg.Disabled {
		return
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.URL
	redisCfg.Host = cfg.Host
	redisCfg.Port = cfg.Port
	redisCfg.Password = cfg.Password
	redisCfg.DB = cfg.DB
	redisCfg.PoolSize = cfg.PoolSize
	redisCfg.MinIdleConns = cfg.MinIdleConns
	redisCfg.DialTimeout = cfg.DialTimeout
	redisCfg.ReadTimeout = cfg.ReadTimeout
	redisCfg.WriteTimeout = cfg.WriteTimeout

	cache, err := redis.NewCache(redisCfg)
	if err != nil {
		log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		return
	}
	a.Cache = cache
	log.Info("Redis connection established")
}

func (a *App) wireNotifier(sender notification.Sender) {
	cfg, log := a.Config, a.Log

	if sender == nil {
		n := cfg.Notification
		if n.SMTPHost != "" && cfg.Features.IsEnabled(config.FeatureEmailNotifications) {
			sender = messaging.NewEmailSender(messaging.SMTPConfig{
				Host:     n.SMTPHost,
				Port:     n.SMTPPort,
				Username: n.SMTPUsername,
				Password: n.SMTPPassword,
				From:     n.From,
				FromName: n.FromName,
			})
		} else {
			sender = messaging.NewLogSender(log)
		}
	}

	breakerLog := messaging.BreakerLogger(log)
	a.Breaker = circuitbreaker.SMTPBreaker(func(name string, from, to circuitbreaker.State) {
		breakerLog(name, from, to)
		a.Metrics.BreakerStateChanged(name, from, to)
	})

	var notifier notification.Notifier = messaging.NewDispatcher(messaging.DispatcherConfig{
		Users:    a.Users,
		Sender:   sender,
		Breaker:  a.Breaker,
		Observer: a.Metrics,
		Clock:    a.Clock,
		Logger:   log,
	})

	if cfg.Features.IsEnabled(config.FeatureAsyncNotifications) {
		a.queue = messaging.NewQueue(notifier, messaging.QueueConfig{
			Workers: cfg.Notification.QueueWorkers,
			Buffer:  cfg.Notification.QueueBuffer,
			Timeout: cfg.Notification.SendTimeout,
			Logger:  log,
			OnDropped: func(kind notification.Kind) {
				a.Metrics.NotificationFailed(kind.String())
			},
		})
		notifier = a.queue
	}
	a.Notifier = notifier

	log.Info("notifications configured",
		logger.String("channel", string(sender.Channel())),
		logger.Bool("async", a.queue != nil),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPONENTS
// ══════════════════════════════════════════════════════════════════════════════

// HTTPDependencies returns the handlers served by the API.
func (a *App) HTTPDependencies() httpserver.Dependencies {
	deps := httpserver.Dependencies{
		ScheduleSession: command.NewScheduleSessionHandler(a.Sessions, a.Requests, a.Tx, a.Engine, a.Notifier, a.Log, a.Metrics),
		UpdateSession:   command.NewUpdateSessionHandler(a.Sessions, a.Tx, a.Engine, a.Notifier, a.Log, a.Metrics),
		AddSlot:         command.NewAddSlotHandler(a.Slots, a.Clock),
		DeleteSlot:      command.NewDeleteSlotHandler(a.Slots),
		CreateRequest:   command.NewCreateRequestHandler(a.Requests, a.Users, a.Clock),
		RespondRequest:  command.NewRespondRequestHandler(a.Requests, a.Clock),
		ListSessions:    query.NewListSessionsHandler(a.Sessions),
		GetSession:      query.NewGetSessionHandler(a.Sessions),
		CheckSlot:       query.NewCheckSlotHandler(a.Engine, a.Sessions),
		ListSlots:       query.NewListSlotsHandler(a.Slots),
		ListRequests:    query.NewListRequestsHandler(a.Requests),
		HealthChecker:   a.HealthChecker(),
		Logger:          a.Log,
	}
	if a.Config.Features.IsEnabled(config.FeatureRequestMetrics) {
		deps.Metrics = a.Metrics
	}
	return deps
}

// HTTPConfig maps the configuration onto the server settings.
func (a *App) HTTPConfig() httpserver.Config {
	h := a.Config.HTTP
	cfg := httpserver.DefaultConfig()
	cfg.Host = h.Host
	cfg.Port = h.Port
	cfg.ReadTimeout = h.ReadTimeout
	cfg.WriteTimeout = h.WriteTimeout
	cfg.IdleTimeout = h.IdleTimeout
	cfg.MaxBodyBytes = h.MaxBodyBytes
	cfg.EnableCORS = h.EnableCORS
	cfg.AllowedOrigins = h.AllowedOrigins
	cfg.EnableMetrics = a.Config.Observability.MetricsEnabled
	cfg.Version = a.Config.App.Version
	return cfg
}

// HealthChecker reports the reachability of the database and Redis.
func (a *App) HealthChecker() handlers.HealthChecker {
	hc := handlers.NewCompositeHealthChecker(a.Config.App.Version)
	if a.Config.HTTP.HealthCheckWait > 0 {
		hc.SetTimeout(a.Config.HTTP.HealthCheckWait)
	}
	if a.DB != nil {
		hc.AddCheck("database", handlers.NewDatabaseCheck(a.DB))
	}
	if a.Cache != nil {
		hc.AddCheck("redis", handlers.NewCacheCheck(a.Cache))
	}
	return hc
}

// Sweeper returns the reminder sweep handler.
func (a *App) Sweeper() *command.SendRemindersHandler {
	return command.NewSendRemindersHandler(a.Sessions, a.Notifier, a.Log, a.Metrics)
}

// ReminderJob returns the scheduled reminder sweep. The Redis lock is used
// when Redis is available and the feature is on.
func (a *App) ReminderJob() *jobs.SendRemindersJob {
	cfg := jobs.SendRemindersConfig{
		LockTTL:  a.Config.Scheduling.SweepLockTTL,
		Timeout:  a.Config.Scheduling.SweepTimeout,
		Clock:    a.Clock,
		Observer: a.Metrics,
		Logger:   a.Log,
	}
	if a.Cache != nil && a.Config.Features.IsEnabled(config.FeatureSweepLock) {
		cfg.Locker = redis.NewLocker(a.Cache)
	}
	return jobs.NewSendRemindersJob(a.Sweeper(), cfg)
}

// Scheduler returns a scheduler with the reminder job registered.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New(scheduler.Config{
		Logger:         a.Log,
		TickInterval:   a.Config.Scheduler.TickInterval,
		MaxHistorySize: a.Config.Scheduler.HistorySize,
		RunOnStart:     a.Config.Scheduler.RunOnStart,
	})
	if err := s.Register(a.ReminderJob(), scheduler.NewIntervalSchedule(a.Config.Scheduling.ReminderSweepInterval)); err != nil {
		return nil, fmt.Errorf("failed to register reminder job: %w", err)
	}
	return s, nil
}

// Close drains the notification queue and closes the stores.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.queue != nil {
		a.Log.Info("draining notification queue...")
		if err := a.queue.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("notification queue: %w", err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.DB != nil {
		a.Log.Info("closing database connection...")
		a.DB.Close()
	}
	return errors.Join(errs...)
}
