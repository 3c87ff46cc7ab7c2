package session

import (
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Scheduling bounds.
const (
	MinDuration   = 30 * time.Minute
	MaxDuration   = 180 * time.Minute
	MaxFutureDays = 90
	MaxFuture     = MaxFutureDays * 24 * time.Hour
)

// ValidateTime checks a candidate range against the booking rules, in order:
// the timezone must resolve, start must not be before now, start must be
// within MaxFuture of now, and the duration must lie in [MinDuration, MaxDuration].
// The first failing rule wins.
func ValidateTime(start, end time.Time, timezone string, now time.Time) error {
	if _, err := timeutil.LoadLocation(timezone); err != nil {
		return ErrInvalidTimezone.WithMessage(fmt.Sprintf("unknown timezone %q", timezone))
	}

	if start.Before(now) {
		return ErrPastDate
	}

	if start.After(now.Add(MaxFuture)) {
		return ErrTooFarFuture
	}

	d := end.Sub(start)
	if d < MinDuration || d > MaxDuration {
		return ErrInvalidDuration
	}

	return nil
}
