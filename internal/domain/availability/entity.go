// Package availability models a mentor's weekly recurring availability.
package availability

import (
	"context"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Errors
var (
	ErrSlotNotFound  = shared.NewDomainError("availability", "Find", shared.ErrNotFound, "SLOT_NOT_FOUND", "availability slot not found")
	ErrInvalidDay    = shared.NewDomainError("availability", "Validate", shared.ErrValueOutOfRange, "INVALID_DAY", "day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidClock  = shared.NewDomainError("availability", "Validate", shared.ErrInvalidFormat, "INVALID_CLOCK", "time must use the HH:MM format")
	ErrOvernightSlot = shared.NewDomainError("availability", "Validate", shared.ErrValidation, "OVERNIGHT_SLOT", "slot must end after it starts; slots past midnight are not supported")
	ErrNotAlumni     = shared.NewDomainError("availability", "Create", shared.ErrUnauthorized, "UNAUTHORIZED", "only alumni can manage availability")
	ErrMissingMentor = shared.NewDomainError("availability", "Validate", shared.ErrInvalidID, "MISSING_MENTOR", "mentor id is required")
)

// Slot is a weekly recurring window in which a mentor accepts bookings.
// StartTime and EndTime are zero-padded "HH:MM" wall clock strings, so that
// lexical comparison is chronological.
type Slot struct {
	ID        string
	MentorID  string
	DayOfWeek time.Weekday
	StartTime string
	EndTime   string
	Meeting   shared.Meeting
	CreatedAt time.Time
}

// NewSlotParams carries slot data as submitted.
type NewSlotParams struct {
	ID        string
	MentorID  string
	DayOfWeek int
	StartTime string
	EndTime   string
	Meeting   shared.Meeting
	Now       time.Time
}

// NewSlot validates and normalizes a slot.
func NewSlot(p NewSlotParams) (*Slot, error) {
	if p.MentorID == "" {
		return nil, ErrMissingMentor
	}
	if p.DayOfWeek < int(time.Sunday) || p.DayOfWeek > int(time.Saturday) {
		return nil, ErrInvalidDay
	}

	start, err := timeutil.NormalizeClock(p.StartTime)
	if err != nil {
		return nil, ErrInvalidClock.WithMessage("start time must use the HH:MM format")
	}
	end, err := timeutil.NormalizeClock(p.EndTime)
	if err != nil {
		return nil, ErrInvalidClock.WithMessage("end time must use the HH:MM format")
	}
	if start >= end {
		return nil, ErrOvernightSlot
	}

	if err := p.Meeting.Validate(); err != nil {
		return nil, err
	}

	return &Slot{
		ID:        p.ID,
		MentorID:  p.MentorID,
		DayOfWeek: time.Weekday(p.DayOfWeek),
		StartTime: start,
		EndTime:   end,
		Meeting:   p.Meeting,
		CreatedAt: p.Now.UTC(),
	}, nil
}

// Covers reports whether clock lies within the slot, both ends inclusive.
func (s *Slot) Covers(clock string) bool {
	return s.StartTime <= clock && clock <= s.EndTime
}

// OwnedBy reports whether the slot belongs to mentorID.
func (s *Slot) OwnedBy(mentorID string) bool {
	return s.MentorID == mentorID
}

// Repository persists availability slots.
type Repository interface {
	Create(ctx context.Context, slot *Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	Delete(ctx context.Context, id string) error

	// FindByMentorAndDay returns the mentor's slots on day.
	FindByMentorAndDay(ctx context.Context, mentorID string, day time.Weekday) ([]*Slot, error)

	// ListByMentor returns every slot of the mentor ordered by day, then start.
	ListByMentor(ctx context.Context, mentorID string) ([]*Slot, error)
}
