package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

type fakeJob struct {
	name    string
	runs    atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	block   chan struct{}
	err     error
	panics  bool
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "test job" }

func (j *fakeJob) Run(ctx context.Context) error {
	if j.active.Add(1) > 1 {
		j.overlap.Store(true)
	}
	defer j.active.Add(-1)
	j.runs.Add(1)

	if j.panics {
		panic("boom")
	}
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(Config{Logger: logger.Nop(), TickInterval: 5 * time.Millisecond})
}

func TestIntervalSchedule(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 17, 0, time.UTC)

	plain := NewIntervalSchedule(time.Minute)
	assert.Equal(t, base.Add(time.Minute), plain.Next(base))
	assert.Equal(t, "@every 1m0s", plain.String())

	aligned := NewAlignedSchedule(time.Minute)
	assert.Equal(t, time.Date(2026, 1, 5, 10, 1, 0, 0, time.UTC), aligned.Next(base))

	assert.Equal(t, time.Minute, NewIntervalSchedule(0).Interval)
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "a"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))
	assert.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Minute)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "b"}, nil), ErrNilSchedule)

	_, err := s.GetJobInfo("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Len(t, s.ListJobs(), 1)
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler()
	failing := &fakeJob{name: "fail", err: errors.New("nope")}
	require.NoError(t, s.Register(failing, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "fail")
	assert.EqualError(t, err, "nope")
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.True(t, result.Manual)

	info, err := s.GetJobInfo("fail")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.RunCount)
	assert.Equal(t, int64(1), info.FailCount)
	assert.Len(t, s.History(0), 1)
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&fakeJob{name: "panic", panics: true}, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "panic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, "panic", result.JobName)

	info, _ := s.GetJobInfo("panic")
	assert.False(t, info.Running)
}

func TestScheduler_NoOverlap(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "slow", block: make(chan struct{})}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, time.Millisecond)

	_, err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrJobRunning)

	require.Eventually(t, func() bool {
		info, _ := s.GetJobInfo("slow")
		return info.SkipCount > 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.block)
	require.Eventually(t, func() bool { return job.runs.Load() > 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, job.overlap.Load())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	s := New(Config{Logger: logger.Nop(), TickInterval: time.Hour, RunOnStart: true})
	job := &fakeJob{name: "blocked", block: make(chan struct{})}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	var completed atomic.Int32
	s.OnJobComplete(func(r JobResult) {
		if errors.Is(r.Error, context.Canceled) {
			completed.Add(1)
		}
	})

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	assert.Equal(t, int32(1), completed.Load())
}
