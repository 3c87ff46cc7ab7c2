package session

import (
	"fmt"
	"time"
)

// BufferTime is the margin kept free before and after every session.
const BufferTime = 15 * time.Minute

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a range [start, end) strictly intersects w.
func (w Window) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// Candidate is a proposed booking checked for conflicts. ExcludeID is set when
// an existing session is being rescheduled so it does not collide with itself.
type Candidate struct {
	StartTime time.Time
	EndTime   time.Time
	MentorID  string
	StudentID string
	ExcludeID string
}

// Buffered expands the candidate range by BufferTime on both ends.
func (c Candidate) Buffered() Window {
	return Window{
		Start: c.StartTime.Add(-BufferTime),
		End:   c.EndTime.Add(BufferTime),
	}
}

// Overlap returns the repository query matching c.
func (c Candidate) Overlap() OverlapQuery {
	return OverlapQuery{
		MentorID:  c.MentorID,
		StudentID: c.StudentID,
		Window:    c.Buffered(),
		ExcludeID: c.ExcludeID,
	}
}

// Conflict explains why a candidate collides.
type Conflict struct {
	SessionID string
	Party     PartyRole // which side of the candidate is double-booked
	StudentID string
	MentorID  string
	StartTime time.Time
	EndTime   time.Time
}

// Involves reports whether userID takes part in the conflicting session.
func (c *Conflict) Involves(userID string) bool {
	return userID != "" && (c.StudentID == userID || c.MentorID == userID)
}

// Reason renders a human-readable explanation.
func (c *Conflict) Reason() string {
	who := "mentor"
	if c.Party == PartyStudent {
		who = "student"
	}
	return fmt.Sprintf("this time slot conflicts with another session of the %s (%s to %s UTC, %s buffer required)",
		who,
		c.StartTime.UTC().Format("2006-01-02 15:04"),
		c.EndTime.UTC().Format("15:04"),
		BufferTime,
	)
}

// Err converts the conflict into the SCHEDULING_CONFLICT domain error.
func (c *Conflict) Err() error {
	return ErrSchedulingConflict.WithMessage(c.Reason())
}

// FindConflict returns the first session in existing that blocks candidate,
// or nil. Only SCHEDULED sessions sharing the mentor or the student count.
func FindConflict(candidate Candidate, existing []*Session) *Conflict {
	window := candidate.Buffered()

	for _, s := range existing {
		if s == nil || s.Status != StatusScheduled || s.ID == candidate.ExcludeID {
			continue
		}

		var party PartyRole
		switch {
		case s.MentorID == candidate.MentorID:
			party = PartyMentor
		case s.StudentID == candidate.StudentID:
			party = PartyStudent
		default:
			continue
		}

		if window.Overlaps(s.StartTime, s.EndTime) {
			return &Conflict{
				SessionID: s.ID,
				Party:     party,
				StudentID: s.StudentID,
				MentorID:  s.MentorID,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
			}
		}
	}

	return nil
}
