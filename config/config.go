package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// ConfigFileEnv names the environment variable pointing at an optional TOML
// file. Values from the file are applied before environment overrides.
const ConfigFileEnv = "MENTORSHIP_CONFIG"

// Config holds all application configuration.
type Config struct {
	App           AppConfig           `toml:"app"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	HTTP          HTTPConfig          `toml:"http"`
	Scheduler     SchedulerConfig     `toml:"scheduler"`
	Scheduling    SchedulingConfig    `toml:"scheduling"`
	Notification  NotificationConfig  `toml:"notification"`
	Observability ObservabilityConfig `toml:"observability"`

	// Feature toggles keyed by name, e.g. [features] "notify.async" = false
	FeatureOverrides map[string]bool `toml:"features"`
	Features         *FeatureFlags   `toml:"-"`

	// Participants loaded into the in-memory store. Ignored with PostgreSQL.
	SeedUsers []SeedUser `toml:"seed_users"`
}

// SeedUser is a [[seed_users]] entry of the config file.
type SeedUser struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Email    string `toml:"email"`
	Role     string `toml:"role"`
	Timezone string `toml:"timezone"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `toml:"name"`
	Environment Environment `toml:"environment"`
	Debug       bool        `toml:"debug"`
	Version     string      `toml:"version"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings. URL wins over the
// discrete fields when both are set. An empty URL and Host selects the
// in-memory store.
type DatabaseConfig struct {
	URL      string `toml:"url"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`

	// Connection pool settings
	MaxConns        int           `toml:"max_conns"`
	MinConns        int           `toml:"min_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `toml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `toml:"connect_timeout"`

	// Ping attempts at startup and attempts per serializable transaction
	ConnectAttempts int `toml:"connect_attempts"`
	TxAttempts      int `toml:"tx_attempts"`

	// Apply pending migrations when the API starts
	AutoMigrate bool `toml:"auto_migrate"`
}

// Enabled reports whether a PostgreSQL connection is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL      string `toml:"url"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`

	// TTL of cached weekly availability
	SlotCacheTTL time.Duration `toml:"slot_cache_ttl"`

	// Disabled turns off the slot cache and the distributed sweep lock
	Disabled bool `toml:"disabled"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	EnableCORS      bool          `toml:"enable_cors"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	HealthCheckWait time.Duration `toml:"health_check_timeout"`
}

// SchedulerConfig holds background job runner settings.
type SchedulerConfig struct {
	Enabled      bool          `toml:"enabled"`
	TickInterval time.Duration `toml:"tick_interval"`
	RunOnStart   bool          `toml:"run_on_start"`
	HistorySize  int           `toml:"history_size"`
}

// SchedulingConfig holds settings of the reminder sweep.
type SchedulingConfig struct {
	ReminderSweepInterval time.Duration `toml:"reminder_sweep_interval"`
	SweepTimeout          time.Duration `toml:"sweep_timeout"`
	SweepLockTTL          time.Duration `toml:"sweep_lock_ttl"`
}

// NotificationConfig holds outbound notification settings. An empty
// SMTPHost logs messages instead of mailing them.
type NotificationConfig struct {
	SMTPHost     string `toml:"smtp_host"`
	SMTPPort     int    `toml:"smtp_port"`
	SMTPUsername string `toml:"smtp_username"`
	SMTPPassword string `toml:"smtp_password"`
	From         string `toml:"from"`
	FromName     string `toml:"from_name"`

	QueueWorkers int           `toml:"queue_workers"`
	QueueBuffer  int           `toml:"queue_buffer"`
	SendTimeout  time.Duration `toml:"send_timeout"`
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"` // json or console
	MetricsEnabled bool   `toml:"metrics_enabled"`
	RuntimeMetrics bool   `toml:"runtime_metrics"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LOADING
// ══════════════════════════════════════════════════════════════════════════════

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:            "mentorship-hub",
			Environment:     EnvDevelopment,
			Version:         "dev",
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			ConnectTimeout:  10 * time.Second,
			ConnectAttempts: 5,
			TxAttempts:      3,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			SlotCacheTTL: 10 * time.Minute,
		},
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxBodyBytes:    1 << 20,
			HealthCheckWait: 5 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			TickInterval: 10 * time.Second,
			RunOnStart:   true,
			HistorySize:  100,
		},
		Scheduling: SchedulingConfig{
			ReminderSweepInterval: time.Minute,
			SweepTimeout:          50 * time.Second,
			SweepLockTTL:          55 * time.Second,
		},
		Notification: NotificationConfig{
			SMTPPort:     587,
			From:         "no-reply@mentorship.local",
			FromName:     "Mentorship Hub",
			QueueWorkers: 4,
			QueueBuffer:  256,
			SendTimeout:  30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsEnabled: true,
			RuntimeMetrics: true,
		},
	}
}

// Load reads configuration in three layers: defaults, the optional TOML file
// named by MENTORSHIP_CONFIG, then environment variables. A .env file in the
// working directory is loaded first without replacing variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	cfg.Features = LoadFeatureFlags(cfg.FeatureOverrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the values present in a TOML file onto cfg.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	app := &c.App
	app.Name = getEnv("APP_NAME", app.Name)
	app.Environment = Environment(getEnv("APP_ENV", string(app.Environment)))
	app.Debug = getEnvBool("APP_DEBUG", app.Debug)
	app.Version = getEnv("APP_VERSION", app.Version)
	app.ShutdownTimeout = getEnvDuration("APP_SHUTDOWN_TIMEOUT", app.ShutdownTimeout)

	db := &c.Database
	db.URL = getEnv("DATABASE_URL", db.URL)
	db.Host = getEnv("DATABASE_HOST", db.Host)
	db.Port = getEnvInt("DATABASE_PORT", db.Port)
	db.Name = getEnv("DATABASE_NAME", db.Name)
	db.User = getEnv("DATABASE_USER", db.User)
	db.Password = getEnv("DATABASE_PASSWORD", db.Password)
	db.SSLMode = getEnv("DATABASE_SSL_MODE", db.SSLMode)
	db.MaxConns = getEnvInt("DATABASE_MAX_CONNS", db.MaxConns)
	db.MinConns = getEnvInt("DATABASE_MIN_CONNS", db.MinConns)
	db.ConnMaxLifetime = getEnvDuration("DATABASE_CONN_MAX_LIFETIME", db.ConnMaxLifetime)
	db.ConnMaxIdleTime = getEnvDuration("DATABASE_CONN_MAX_IDLE_TIME", db.ConnMaxIdleTime)
	db.ConnectTimeout = getEnvDuration("DATABASE_CONNECT_TIMEOUT", db.ConnectTimeout)
	db.ConnectAttempts = getEnvInt("DATABASE_CONNECT_ATTEMPTS", db.ConnectAttempts)
	db.TxAttempts = getEnvInt("DATABASE_TX_ATTEMPTS", db.TxAttempts)
	db.AutoMigrate = getEnvBool("DATABASE_AUTO_MIGRATE", db.AutoMigrate)

	rd := &c.Redis
	rd.URL = getEnv("REDIS_URL", rd.URL)
	rd.Host = getEnv("REDIS_HOST", rd.Host)
	rd.Port = getEnvInt("REDIS_PORT", rd.Port)
	rd.Password = getEnv("REDIS_PASSWORD", rd.Password)
	rd.DB = getEnvInt("REDIS_DB", rd.DB)
	rd.PoolSize = getEnvInt("REDIS_POOL_SIZE", rd.PoolSize)
	rd.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", rd.MinIdleConns)
	rd.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", rd.DialTimeout)
	rd.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", rd.ReadTimeout)
	rd.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", rd.WriteTimeout)
	rd.SlotCacheTTL = getEnvDuration("REDIS_SLOT_CACHE_TTL", rd.SlotCacheTTL)
	rd.Disabled = getEnvBool("REDIS_DISABLED", rd.Disabled)

	h := &c.HTTP
	h.Host = getEnv("HTTP_HOST", h.Host)
	h.Port = getEnvInt("HTTP_PORT", h.Port)
	h.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", h.ReadTimeout)
	h.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", h.WriteTimeout)
	h.IdleTimeout = getEnvDuration("HTTP_IDLE_TIMEOUT", h.IdleTimeout)
	h.MaxBodyBytes = int64(getEnvInt("HTTP_MAX_BODY_BYTES", int(h.MaxBodyBytes)))
	h.EnableCORS = getEnvBool("HTTP_ENABLE_CORS", h.EnableCORS)
	h.AllowedOrigins = getEnvStringSlice("HTTP_ALLOWED_ORIGINS", h.AllowedOrigins)
	h.HealthCheckWait = getEnvDuration("HTTP_HEALTH_CHECK_TIMEOUT", h.HealthCheckWait)

	s := &c.Scheduler
	s.Enabled = getEnvBool("SCHEDULER_ENABLED", s.Enabled)
	s.TickInterval = getEnvDuration("SCHEDULER_TICK_INTERVAL", s.TickInterval)
	s.RunOnStart = getEnvBool("SCHEDULER_RUN_ON_START", s.RunOnStart)
	s.HistorySize = getEnvInt("SCHEDULER_HISTORY_SIZE", s.HistorySize)

	sc := &c.Scheduling
	sc.ReminderSweepInterval = getEnvDuration("REMINDER_SWEEP_INTERVAL", sc.ReminderSweepInterval)
	sc.SweepTimeout = getEnvDuration("REMINDER_SWEEP_TIMEOUT", sc.SweepTimeout)
	sc.SweepLockTTL = getEnvDuration("REMINDER_SWEEP_LOCK_TTL", sc.SweepLockTTL)

	n := &c.Notification
	n.SMTPHost = getEnv("SMTP_HOST", n.SMTPHost)
	n.SMTPPort = getEnvInt("SMTP_PORT", n.SMTPPort)
	n.SMTPUsername = getEnv("SMTP_USERNAME", n.SMTPUsername)
	n.SMTPPassword = getEnv("SMTP_PASSWORD", n.SMTPPassword)
	n.From = getEnv("SMTP_FROM", n.From)
	n.FromName = getEnv("SMTP_FROM_NAME", n.FromName)
	n.QueueWorkers = getEnvInt("NOTIFY_QUEUE_WORKERS", n.QueueWorkers)
	n.QueueBuffer = getEnvInt("NOTIFY_QUEUE_BUFFER", n.QueueBuffer)
	n.SendTimeout = getEnvDuration("NOTIFY_SEND_TIMEOUT", n.SendTimeout)

	o := &c.Observability
	o.LogLevel = getEnv("LOG_LEVEL", o.LogLevel)
	o.LogFormat = getEnv("LOG_FORMAT", o.LogFormat)
	o.MetricsEnabled = getEnvBool("METRICS_ENABLED", o.MetricsEnabled)
	o.RuntimeMetrics = getEnvBool("METRICS_RUNTIME", o.RuntimeMetrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Validate checks that the configuration is usable. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var errs []string

	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("APP_ENV must be one of development, staging, production (got %q)", c.App.Environment))
	}

	if c.IsProduction() && !c.Database.Enabled() {
		errs = append(errs, "DATABASE_URL or DATABASE_HOST is required in production")
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, "DATABASE_MAX_CONNS must be at least 1")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "DATABASE_MIN_CONNS must be between 0 and DATABASE_MAX_CONNS")
	}
	if c.Database.TxAttempts < 1 {
		errs = append(errs, "DATABASE_TX_ATTEMPTS must be at least 1")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("HTTP_PORT must be between 1 and 65535 (got %d)", c.HTTP.Port))
	}
	if c.HTTP.MaxBodyBytes < 0 {
		errs = append(errs, "HTTP_MAX_BODY_BYTES must not be negative")
	}

	if c.Scheduler.TickInterval <= 0 {
		errs = append(errs, "SCHEDULER_TICK_INTERVAL must be positive")
	}
	if c.Scheduling.ReminderSweepInterval <= 0 {
		errs = append(errs, "REMINDER_SWEEP_INTERVAL must be positive")
	}
	if c.Scheduling.SweepLockTTL > 0 && c.Scheduling.SweepLockTTL < c.Scheduling.SweepTimeout {
		errs = append(errs, "REMINDER_SWEEP_LOCK_TTL must not be shorter than REMINDER_SWEEP_TIMEOUT")
	}

	if c.Notification.SMTPHost != "" && c.Notification.From == "" {
		errs = append(errs, "SMTP_FROM is required when SMTP_HOST is set")
	}

	for i, u := range c.SeedUsers {
		if u.ID == "" {
			errs = append(errs, fmt.Sprintf("seed_users[%d]: id is required", i))
		}
		if u.Role != "STUDENT" && u.Role != "ALUMNI" {
			errs = append(errs, fmt.Sprintf("seed_users[%d]: role must be STUDENT or ALUMNI (got %q)", i, u.Role))
		}
	}

	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be json or console (got %q)", c.Observability.LogFormat))
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var result []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
