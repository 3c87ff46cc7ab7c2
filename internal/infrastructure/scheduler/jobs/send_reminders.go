// Package jobs contains the scheduled jobs of the mentorship hub worker.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND REMINDERS JOB
// ══════════════════════════════════════════════════════════════════════════════

// Sweeper runs one reminder sweep.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (*command.SweepResult, error)
}

// Locker hands out the cross-replica sweep lock.
type Locker interface {
	Acquire(ctx context.Context, resource string, ttl time.Duration) (*redis.Lock, error)
}

// lockRenewals is how many times per TTL a held lock is extended.
const lockRenewals = 3

// SweepObserver receives sweep durations.
type SweepObserver interface {
	ObserveSweep(elapsed time.Duration)
}

// SendRemindersConfig configures the reminder job.
type SendRemindersConfig struct {
	// Locker is optional. Without it every replica sweeps, which stays
	// correct because reminders are claimed in storage.
	Locker Locker

	// LockTTL bounds how long a crashed holder blocks other replicas.
	LockTTL time.Duration

	// Timeout caps a single sweep.
	Timeout time.Duration

	Clock    timeutil.Clock
	Observer SweepObserver
	Logger   *logger.Logger
}

// SendRemindersJob runs the reminder sweep on a schedule.
type SendRemindersJob struct {
	sweeper Sweeper
	cfg     SendRemindersConfig
	log     *logger.Logger
}

// lockResource is the lock name shared by all worker replicas.
const lockResource = "reminder-sweep"

// NewSendRemindersJob creates the job.
func NewSendRemindersJob(sweeper Sweeper, cfg SendRemindersConfig) *SendRemindersJob {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = redis.TTLDistributedLock
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &SendRemindersJob{
		sweeper: sweeper,
		cfg:     cfg,
		log:     cfg.Logger.With(logger.Component("send_reminders_job")),
	}
}

// Name returns the job name.
func (j *SendRemindersJob) Name() string { return "send_reminders" }

// Description returns the job description.
func (j *SendRemindersJob) Description() string {
	return "Sends 24h, 1h and 15m reminders for upcoming sessions"
}

// Run performs one sweep. A lock held by another replica is not an error.
func (j *SendRemindersJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	if j.cfg.Locker != nil {
		lock, err := j.cfg.Locker.Acquire(ctx, lockResource, j.cfg.LockTTL)
		if errors.Is(err, redis.ErrLockHeld) {
			j.log.Debug("sweep lock held elsewhere, skipping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("send_reminders: %w", err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				j.log.Warn("failed to release sweep lock", logger.Err(err))
			}
		}()

		var stop func()
		ctx, stop = j.keepAlive(ctx, lock)
		defer stop()
	}

	result, err := j.sweeper.Sweep(ctx, j.cfg.Clock.Now())
	if result != nil {
		if j.cfg.Observer != nil {
			j.cfg.Observer.ObserveSweep(result.Duration)
		}
		if result.RemindersSent > 0 || result.Errors > 0 {
			j.log.Info("reminder sweep finished",
				logger.Int("scanned", result.SessionsScanned),
				logger.Int("reminders", result.RemindersSent),
				logger.Int("already_claimed", result.AlreadyClaimed),
				logger.Int("notifications", result.Notifications),
				logger.Int("errors", result.Errors),
				logger.Latency(result.Duration),
			)
		}
	}
	return err
}

// keepAlive extends lock every LockTTL/3 until stop is called. Losing the
// lock cancels the returned context so the sweep ends early.
func (j *SendRemindersJob) keepAlive(ctx context.Context, lock *redis.Lock) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(j.cfg.LockTTL / lockRenewals)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lock.Extend(ctx, j.cfg.LockTTL); err != nil {
					if ctx.Err() != nil {
						return
					}
					j.log.Warn("lost sweep lock, stopping sweep", logger.Err(err))
					cancel()
					return
				}
			}
		}
	}()

	return ctx, func() {
		cancel()
		<-done
	}
}
