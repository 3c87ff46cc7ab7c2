// Package scheduling combines the pure time, availability and conflict rules
// with the repositories they read from. Commands and queries share it so that
// booking, rescheduling and the dry-run check apply identical rules.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Engine evaluates candidate bookings.
type Engine struct {
	sessions session.Repository
	slots    availability.Repository
	clock    timeutil.Clock
}

// NewEngine creates an engine. A nil clock means the system clock.
func NewEngine(sessions session.Repository, slots availability.Repository, clock timeutil.Clock) *Engine {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &Engine{sessions: sessions, slots: slots, clock: clock}
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now().UTC()
}

// IsAvailable reports whether the mentor has a weekly slot containing start,
// with day and clock taken in timezone.
func (e *Engine) IsAvailable(ctx context.Context, mentorID string, start time.Time, timezone string) (bool, error) {
	loc := timeutil.LocationOrUTC(timezone)
	day := timeutil.Weekday(start, loc)

	slots, err := e.slots.FindByMentorAndDay(ctx, mentorID, day)
	if err != nil {
		return false, fmt.Errorf("is_available: failed to load slots: %w", err)
	}

	_, ok := availability.Match(slots, start, loc)
	return ok, nil
}

// FindConflict returns the first SCHEDULED session blocking c, or nil.
func (e *Engine) FindConflict(ctx context.Context, c session.Candidate) (*session.Conflict, error) {
	existing, err := e.sessions.FindOverlapping(ctx, c.Overlap())
	if err != nil {
		return nil, fmt.Errorf("find_conflict: failed to load sessions: %w", err)
	}
	return session.FindConflict(c, existing), nil
}

// Check runs the time rules, the availability match and the conflict check in
// that order and returns the first rejection as a domain error.
func (e *Engine) Check(ctx context.Context, c session.Candidate, timezone string) error {
	if err := session.ValidateTime(c.StartTime, c.EndTime, timezone, e.Now()); err != nil {
		return err
	}
	return e.CheckPlacement(ctx, c, timezone)
}

// CheckPlacement runs only the availability match and the conflict check.
// Callers holding participant locks use it after validating times up front.
func (e *Engine) CheckPlacement(ctx context.Context, c session.Candidate, timezone string) error {
	ok, err := e.IsAvailable(ctx, c.MentorID, c.StartTime, timezone)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrNotAvailable
	}

	conflict, err := e.FindConflict(ctx, c)
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict.Err()
	}
	return nil
}
