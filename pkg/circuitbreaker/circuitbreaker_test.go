package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

var errDial = errors.New("dial tcp: connection refused")

func fail(context.Context) error { return errDial }
func ok(context.Context) error   { return nil }

func TestBreakerOpensAndRecovers(t *testing.T) {
	clock := timeutil.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var transitions []string
	cb := New("smtp",
		WithFailureThreshold(2),
		WithSuccessThreshold(1),
		WithCoolDown(time.Minute),
		WithClock(clock),
		WithOnStateChange(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errDial)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDial)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock.Advance(time.Minute)
	assert.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	clock := timeutil.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := New("smtp", WithFailureThreshold(1), WithCoolDown(time.Second), WithClock(clock))
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateOpen, cb.State())

	clock.Advance(time.Second)
	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, ok), ErrCircuitOpen)
}

func TestBreakerIgnoresClassifiedErrors(t *testing.T) {
	cb := New("smtp", WithFailureThreshold(1), WithIsFailure(func(err error) bool { return !errors.Is(err, errDial) }))

	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, StateClosed, cb.State())

	cb.Reset()
	assert.Equal(t, "smtp", cb.Name())
}
