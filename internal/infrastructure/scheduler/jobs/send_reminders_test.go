package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeSweeper) Sweep(_ context.Context, now time.Time) (*command.SweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return &command.SweepResult{RemindersSent: 1, Duration: 3 * time.Millisecond}, f.err
}

type sweepDurations struct{ got []time.Duration }

func (s *sweepDurations) ObserveSweep(d time.Duration) { s.got = append(s.got, d) }

func newLocker(t *testing.T) (*redis.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewLocker(redis.NewCacheFromClient(client)), mr
}

func TestSendRemindersJob_UsesClock(t *testing.T) {
	now := time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{}
	observer := &sweepDurations{}

	job := NewSendRemindersJob(sweeper, SendRemindersConfig{
		Clock:    timeutil.NewFixedClock(now),
		Observer: observer,
		Logger:   logger.Nop(),
	})

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, sweeper.calls, 1)
	assert.Equal(t, now, sweeper.calls[0])
	assert.Equal(t, []time.Duration{3 * time.Millisecond}, observer.got)
	assert.Equal(t, "send_reminders", job.Name())
}

func TestSendRemindersJob_SkipsWhenLockHeld(t *testing.T) {
	locker, mr := newLocker(t)
	sweeper := &fakeSweeper{}
	job := NewSendRemindersJob(sweeper, SendRemindersConfig{Locker: locker, Logger: logger.Nop()})

	other, err := locker.Acquire(context.Background(), lockResource, time.Minute)
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, sweeper.calls)

	require.NoError(t, other.Release(context.Background()))
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, sweeper.calls, 1)
	assert.False(t, mr.Exists(redis.LockKey(lockResource)), "lock released after the sweep")
}

func TestSendRemindersJob_PropagatesErrors(t *testing.T) {
	locker, mr := newLocker(t)
	sweeper := &fakeSweeper{err: errors.New("db down")}
	job := NewSendRemindersJob(sweeper, SendRemindersConfig{Locker: locker, Logger: logger.Nop()})

	assert.EqualError(t, job.Run(context.Background()), "db down")
	assert.False(t, mr.Exists(redis.LockKey(lockResource)))

	mr.Close()
	assert.Error(t, job.Run(context.Background()))
}

type blockingSweeper struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingSweeper() *blockingSweeper {
	return &blockingSweeper{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingSweeper) Sweep(ctx context.Context, _ time.Time) (*command.SweepResult, error) {
	close(b.started)
	select {
	case <-b.release:
		return &command.SweepResult{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSendRemindersJob_RenewsLockDuringLongSweep(t *testing.T) {
	locker, mr := newLocker(t)
	sweeper := newBlockingSweeper()
	job := NewSendRemindersJob(sweeper, SendRemindersConfig{
		Locker:  locker,
		LockTTL: 300 * time.Millisecond,
		Logger:  logger.Nop(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- job.Run(context.Background()) }()
	<-sweeper.started

	key := redis.LockKey(lockResource)
	mr.FastForward(250 * time.Millisecond)
	require.True(t, mr.Exists(key))
	assert.Eventually(t, func() bool { return mr.TTL(key) > 100*time.Millisecond }, 2*time.Second, 5*time.Millisecond)

	close(sweeper.release)
	require.NoError(t, <-errCh)
	assert.False(t, mr.Exists(key))
}

func TestSendRemindersJob_StopsWhenLockLost(t *testing.T) {
	locker, mr := newLocker(t)
	sweeper := newBlockingSweeper()
	job := NewSendRemindersJob(sweeper, SendRemindersConfig{
		Locker:  locker,
		LockTTL: 150 * time.Millisecond,
		Logger:  logger.Nop(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- job.Run(context.Background()) }()
	<-sweeper.started

	key := redis.LockKey(lockResource)
	require.NoError(t, mr.Set(key, "other-replica"))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep kept running after the lock was taken over")
	}
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "other-replica", got)
}
