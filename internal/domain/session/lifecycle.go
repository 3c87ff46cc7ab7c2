package session

import (
	"strings"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Rating bounds for mentor and student ratings.
const (
	MinRating = 1
	MaxRating = 5
)

// ══════════════════════════════════════════════════════════════════════════════
// PATCH
// ══════════════════════════════════════════════════════════════════════════════

// Patch is a requested amendment. Nil fields are left untouched.
type Patch struct {
	Status *Status

	Title       *string
	Description *string
	Agenda      *string

	StartTime   *time.Time
	EndTime     *time.Time
	Timezone    *string
	Location    *shared.Location
	MeetingType *shared.MeetingType
	MeetingLink *string
	Venue       *string

	Notes           *string
	Feedback        *string
	StudentFeedback *string
	MentorRating    *int
	StudentRating   *int
}

func (p Patch) touchesTime() bool {
	return p.StartTime != nil || p.EndTime != nil || p.Timezone != nil
}

func (p Patch) touchesMeeting() bool {
	return p.Location != nil || p.MeetingType != nil || p.MeetingLink != nil || p.Venue != nil
}

func (p Patch) touchesDetails() bool {
	return p.Title != nil || p.Description != nil || p.Agenda != nil
}

func (p Patch) touchesReview() bool {
	return p.Notes != nil || p.Feedback != nil || p.StudentRating != nil
}

func (p Patch) touchesFeedback() bool {
	return p.StudentFeedback != nil || p.MentorRating != nil
}

// Changes classifies the patch into the kinds of change it requests.
// Notes, feedback and student rating sent together with a COMPLETED status
// belong to the completion; sent alone they are a mentor review.
func (p Patch) Changes() ([]Change, error) {
	var changes []Change

	if p.Status != nil {
		switch *p.Status {
		case StatusCancelled:
			changes = append(changes, ChangeCancel)
		case StatusCompleted:
			changes = append(changes, ChangeComplete)
		case StatusScheduled:
			return nil, ErrUnauthorizedTransition.WithMessage("a session cannot be moved back to SCHEDULED")
		default:
			return nil, ErrInvalidStatus
		}
	}

	completing := p.Status != nil && *p.Status == StatusCompleted
	if p.touchesReview() && !completing {
		changes = append(changes, ChangeReview)
	}
	if p.touchesFeedback() {
		changes = append(changes, ChangeFeedback)
	}
	if p.touchesDetails() {
		changes = append(changes, ChangeEditDetails)
	}
	if p.touchesTime() || p.touchesMeeting() {
		changes = append(changes, ChangeReschedule)
	}

	if len(changes) == 0 {
		return nil, ErrEmptyPatch
	}
	if p.Status != nil && len(changes) > 1 {
		return nil, ErrMixedChange
	}
	return changes, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MUTATION
// ══════════════════════════════════════════════════════════════════════════════

// Mutation is the outcome of applying a patch. Session is an updated copy; the
// original passed to Apply is never modified.
type Mutation struct {
	Session *Session
	Actor   PartyRole
	Changes []Change

	// Rescheduled is set when time or meeting fields changed and the
	// candidate must go through time, availability and conflict checks again.
	Rescheduled bool

	// StartMoved is set when the start instant differs from the stored one.
	StartMoved bool
}

// Has reports whether the mutation includes change c.
func (m *Mutation) Has(c Change) bool {
	for _, x := range m.Changes {
		if x == c {
			return true
		}
	}
	return false
}

// Candidate returns the conflict-check candidate for the updated session,
// excluding the session itself.
func (m *Mutation) Candidate() Candidate {
	s := m.Session
	return Candidate{
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		MentorID:  s.MentorID,
		StudentID: s.StudentID,
		ExcludeID: s.ID,
	}
}

// Apply checks the actor may make the requested changes and builds the
// updated session. Time rules, availability and conflicts are not checked
// here; callers run them when Rescheduled is set.
//
// An actor that is not a party of s gets ErrSessionNotFound. An actor whose
// platform role disagrees with their party role gets ErrRoleMismatch.
func Apply(s *Session, actor shared.Actor, p Patch, now time.Time) (*Mutation, error) {
	role, ok := s.PartyRoleOf(actor.UserID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if (role == PartyStudent && !actor.IsStudent()) || (role == PartyMentor && !actor.IsAlumni()) {
		return nil, ErrRoleMismatch
	}

	changes, err := p.Changes()
	if err != nil {
		return nil, err
	}
	if err := Authorize(role, s.Status, changes); err != nil {
		return nil, err
	}

	m := &Mutation{Session: s.Clone(), Actor: role, Changes: changes}
	next := m.Session
	now = now.UTC()

	for _, c := range changes {
		switch c {
		case ChangeCancel:
			next.Status = StatusCancelled
			next.CancelledAt = &now

		case ChangeComplete:
			if err := applyCompletion(next, p, now); err != nil {
				return nil, err
			}

		case ChangeFeedback:
			if err := applyFeedback(next, p); err != nil {
				return nil, err
			}

		case ChangeEditDetails:
			if err := applyDetails(next, p); err != nil {
				return nil, err
			}

		case ChangeReschedule:
			if err := applyReschedule(next, p); err != nil {
				return nil, err
			}
			m.Rescheduled = true
			m.StartMoved = !next.StartTime.Equal(s.StartTime)
			if m.StartMoved {
				next.ReminderTags = []ReminderTag{}
			}
		}
	}

	next.LastModifiedBy = actor.UserID
	next.UpdatedAt = now
	return m, nil
}

func applyCompletion(s *Session, p Patch, now time.Time) error {
	if p.Notes == nil || p.Feedback == nil ||
		strings.TrimSpace(*p.Notes) == "" || strings.TrimSpace(*p.Feedback) == "" {
		return ErrCompletionIncomplete
	}
	if err := validateRating(p.StudentRating); err != nil {
		return err
	}

	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.Notes = *p.Notes
	s.Feedback = *p.Feedback
	if p.StudentRating != nil {
		v := *p.StudentRating
		s.StudentRating = &v
	}
	return nil
}

func applyFeedback(s *Session, p Patch) error {
	hasText := p.StudentFeedback != nil && strings.TrimSpace(*p.StudentFeedback) != ""
	if !hasText && p.MentorRating == nil {
		return ErrFeedbackRequired
	}
	if err := validateRating(p.MentorRating); err != nil {
		return err
	}

	if p.StudentFeedback != nil {
		s.StudentFeedback = *p.StudentFeedback
	}
	if p.MentorRating != nil {
		v := *p.MentorRating
		s.MentorRating = &v
	}
	return nil
}

func applyDetails(s *Session, p Patch) error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
		s.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Agenda != nil {
		s.Agenda = *p.Agenda
	}
	return nil
}

// applyReschedule merges time and meeting fields into s and validates the
// merged meeting descriptor.
func applyReschedule(s *Session, p Patch) error {
	if p.StartTime != nil {
		s.StartTime = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		s.EndTime = p.EndTime.UTC()
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	s.Duration = timeutil.MinutesBetween(s.StartTime, s.EndTime)

	if p.Location != nil {
		s.Meeting.Location = *p.Location
	}
	if p.MeetingType != nil {
		s.Meeting.Type = *p.MeetingType
	}
	if p.MeetingLink != nil {
		s.Meeting.Link = *p.MeetingLink
	}
	if p.Venue != nil {
		s.Meeting.Venue = *p.Venue
	}
	return s.Meeting.Validate()
}

func validateRating(r *int) error {
	if r == nil {
		return nil
	}
	if *r < MinRating || *r > MaxRating {
		return ErrInvalidRating
	}
	return nil
}
