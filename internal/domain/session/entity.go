// Package session contains the mentorship session aggregate: its time rules,
// the buffered conflict check, the lifecycle permission table and the
// reminder bookkeeping. Everything here is pure; persistence and clocks are
// supplied by callers.
package session

import (
	"strings"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of a session.
type Status string

const (
	// StatusScheduled is the initial state set at creation.
	StatusScheduled Status = "SCHEDULED"

	// StatusCompleted is terminal; only student feedback may still change.
	StatusCompleted Status = "COMPLETED"

	// StatusCancelled is terminal.
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// IsTerminal reports whether no status transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ══════════════════════════════════════════════════════════════════════════════
// PARTY ROLE
// ══════════════════════════════════════════════════════════════════════════════

// PartyRole is the role a user plays in one particular session.
type PartyRole string

const (
	PartyStudent PartyRole = "student"
	PartyMentor  PartyRole = "mentor"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is a booked mentorship meeting between a student and an alumni mentor.
type Session struct {
	ID        string
	StudentID string
	MentorID  string
	RequestID string

	StartTime time.Time
	EndTime   time.Time
	Timezone  string
	Duration  int // minutes

	Status  Status
	Meeting shared.Meeting

	Title       string
	Description string
	Agenda      string

	Notes           string
	Feedback        string
	StudentFeedback string
	MentorRating    *int
	StudentRating   *int

	RemindersSent  []time.Time
	ReminderTags   []ReminderTag
	LastModifiedBy string
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSessionParams carries the data needed to book a session.
type NewSessionParams struct {
	ID          string
	StudentID   string
	MentorID    string
	RequestID   string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string
	Meeting     shared.Meeting
	Title       string
	Description string
	Agenda      string
	CreatedBy   string
	Now         time.Time
}

// MaxTitleLength bounds the session title.
const MaxTitleLength = 200

// NewSession builds a SCHEDULED session with derived fields filled in. Time
// rules are not checked here; see ValidateTime.
func NewSession(p NewSessionParams) (*Session, error) {
	if p.ID == "" {
		return nil, ErrInvalidSessionID
	}
	if p.StudentID == "" || p.MentorID == "" {
		return nil, ErrMissingParticipant
	}
	if p.StudentID == p.MentorID {
		return nil, ErrSelfBooking
	}
	if err := ValidateTitle(p.Title); err != nil {
		return nil, err
	}
	if err := p.Meeting.Validate(); err != nil {
		return nil, err
	}

	now := p.Now.UTC()
	return &Session{
		ID:             p.ID,
		StudentID:      p.StudentID,
		MentorID:       p.MentorID,
		RequestID:      p.RequestID,
		StartTime:      p.StartTime.UTC(),
		EndTime:        p.EndTime.UTC(),
		Timezone:       p.Timezone,
		Duration:       timeutil.MinutesBetween(p.StartTime, p.EndTime),
		Status:         StatusScheduled,
		Meeting:        p.Meeting,
		Title:          strings.TrimSpace(p.Title),
		Description:    p.Description,
		Agenda:         p.Agenda,
		RemindersSent:  []time.Time{},
		ReminderTags:   []ReminderTag{},
		LastModifiedBy: p.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ValidateTitle checks the title is present and bounded.
func ValidateTitle(title string) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return ErrTitleRequired
	}
	if len(t) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// IsParty reports whether userID is the student or the mentor.
func (s *Session) IsParty(userID string) bool {
	return userID != "" && (userID == s.StudentID || userID == s.MentorID)
}

// PartyRoleOf returns the role userID plays in the session.
func (s *Session) PartyRoleOf(userID string) (PartyRole, bool) {
	switch userID {
	case "":
		return "", false
	case s.MentorID:
		return PartyMentor, true
	case s.StudentID:
		return PartyStudent, true
	default:
		return "", false
	}
}

// Participants returns student and mentor ids.
func (s *Session) Participants() []string {
	return []string{s.StudentID, s.MentorID}
}

// OtherParty returns the participant that is not userID.
func (s *Session) OtherParty(userID string) string {
	if userID == s.MentorID {
		return s.StudentID
	}
	return s.MentorID
}

// Location resolves the session's timezone, falling back to UTC.
func (s *Session) Location() *time.Location {
	return timeutil.LocationOrUTC(s.Timezone)
}

// HasReminder reports whether the reminder for tag was already dispatched.
func (s *Session) HasReminder(tag ReminderTag) bool {
	for _, t := range s.ReminderTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	cp := *s
	cp.RemindersSent = append([]time.Time(nil), s.RemindersSent...)
	cp.ReminderTags = append([]ReminderTag(nil), s.ReminderTags...)
	if s.MentorRating != nil {
		v := *s.MentorRating
		cp.MentorRating = &v
	}
	if s.StudentRating != nil {
		v := *s.StudentRating
		cp.StudentRating = &v
	}
	if s.CompletedAt != nil {
		v := *s.CompletedAt
		cp.CompletedAt = &v
	}
	if s.CancelledAt != nil {
		v := *s.CancelledAt
		cp.CancelledAt = &v
	}
	return &cp
}
