package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

var testNow = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func TestValidateTimeAcceptsBounds(t *testing.T) {
	start := testNow.Add(2 * time.Hour)

	assert.NoError(t, ValidateTime(start, start.Add(MinDuration), "UTC", testNow))
	assert.NoError(t, ValidateTime(start, start.Add(MaxDuration), "Asia/Almaty", testNow))
	assert.NoError(t, ValidateTime(testNow, testNow.Add(time.Hour), "UTC", testNow), "start equal to now is not in the past")
	assert.NoError(t, ValidateTime(testNow.Add(MaxFuture), testNow.Add(MaxFuture+time.Hour), "UTC", testNow))
}

func TestValidateTimeDurationOutOfBounds(t *testing.T) {
	start := testNow.Add(24 * time.Hour)

	for minutes := 0; minutes < 30; minutes++ {
		err := ValidateTime(start, start.Add(time.Duration(minutes)*time.Minute), "UTC", testNow)
		assert.ErrorIs(t, err, ErrInvalidDuration, "duration %d", minutes)
	}
	for minutes := 181; minutes <= 600; minutes += 7 {
		err := ValidateTime(start, start.Add(time.Duration(minutes)*time.Minute), "UTC", testNow)
		assert.ErrorIs(t, err, ErrInvalidDuration, "duration %d", minutes)
	}

	assert.ErrorIs(t, ValidateTime(start, start.Add(-time.Hour), "UTC", testNow), ErrInvalidDuration)
}

func TestValidateTimePastDate(t *testing.T) {
	for _, ago := range []time.Duration{time.Second, time.Minute, time.Hour, 30 * 24 * time.Hour} {
		start := testNow.Add(-ago)
		err := ValidateTime(start, start.Add(time.Hour), "UTC", testNow)
		assert.ErrorIs(t, err, ErrPastDate, "ago %s", ago)
		assert.True(t, shared.IsValidation(err))
	}
}

func TestValidateTimeTooFarFuture(t *testing.T) {
	for _, extra := range []time.Duration{time.Minute, time.Hour, 10 * 24 * time.Hour} {
		start := testNow.Add(MaxFuture + extra)
		err := ValidateTime(start, start.Add(time.Hour), "UTC", testNow)
		assert.ErrorIs(t, err, ErrTooFarFuture, "extra %s", extra)
	}
}

func TestValidateTimeRuleOrder(t *testing.T) {
	past := testNow.Add(-time.Hour)

	// A past start with a bad duration reports the past date first.
	assert.ErrorIs(t, ValidateTime(past, past.Add(5*time.Minute), "UTC", testNow), ErrPastDate)

	far := testNow.Add(MaxFuture + time.Hour)
	assert.ErrorIs(t, ValidateTime(far, far.Add(5*time.Minute), "UTC", testNow), ErrTooFarFuture)

	err := ValidateTime(past, past.Add(time.Hour), "Mars/Olympus", testNow)
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	assert.False(t, errors.Is(err, ErrPastDate))
}
