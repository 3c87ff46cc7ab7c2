package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule runs a job at a fixed interval. With Aligned set, runs
// land on multiples of the interval (10:00:00, 10:01:00, ...) instead of
// drifting with the registration time.
type IntervalSchedule struct {
	Interval time.Duration
	Aligned  bool
}

// NewIntervalSchedule creates a new IntervalSchedule. Non-positive intervals
// fall back to one minute.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval <= 0 {
		interval = time.Minute
	}
	return &IntervalSchedule{Interval: interval}
}

// NewAlignedSchedule creates an IntervalSchedule aligned to interval boundaries.
func NewAlignedSchedule(interval time.Duration) *IntervalSchedule {
	s := NewIntervalSchedule(interval)
	s.Aligned = true
	return s
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	if s.Aligned {
		return t.Truncate(s.Interval).Add(s.Interval)
	}
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	if s.Aligned {
		return fmt.Sprintf("@every %s (aligned)", s.Interval)
	}
	return fmt.Sprintf("@every %s", s.Interval)
}
