// Package query contains read operations (CQRS - Queries).
package query

import (
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION DTO
// ══════════════════════════════════════════════════════════════════════════════

// SessionDTO is the read model of a session as seen by one participant.
type SessionDTO struct {
	// ─────────────────────────────────────────────────────────────────────────
	// Identity
	// ─────────────────────────────────────────────────────────────────────────

	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	MentorID  string `json:"mentorId"`
	RequestID string `json:"requestId,omitempty"`

	// ─────────────────────────────────────────────────────────────────────────
	// Schedule
	// ─────────────────────────────────────────────────────────────────────────

	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Timezone  string    `json:"timezone"`
	Duration  int       `json:"duration"`
	Status    string    `json:"status"`

	Location    string `json:"location"`
	MeetingType string `json:"meetingType"`
	MeetingLink string `json:"meetingLink,omitempty"`
	Venue       string `json:"venue,omitempty"`

	// ─────────────────────────────────────────────────────────────────────────
	// Content
	// ─────────────────────────────────────────────────────────────────────────

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Agenda      string `json:"agenda,omitempty"`

	// Notes are private to the mentor.
	Notes           string `json:"notes,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	StudentFeedback string `json:"studentFeedback,omitempty"`
	MentorRating    *int   `json:"mentorRating,omitempty"`
	StudentRating   *int   `json:"studentRating,omitempty"`

	// ─────────────────────────────────────────────────────────────────────────
	// Bookkeeping
	// ─────────────────────────────────────────────────────────────────────────

	RemindersSent  []time.Time `json:"remindersSent"`
	ReminderTags   []string    `json:"reminderTags"`
	LastModifiedBy string      `json:"lastModifiedBy,omitempty"`
	CompletedAt    *time.Time  `json:"completedAt,omitempty"`
	CancelledAt    *time.Time  `json:"cancelledAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// NewSessionDTO builds the read model for viewerID. Mentor notes are stripped
// for anyone but the mentor.
func NewSessionDTO(s *session.Session, viewerID string) SessionDTO {
	dto := SessionDTO{
		ID:              s.ID,
		StudentID:       s.StudentID,
		MentorID:        s.MentorID,
		RequestID:       s.RequestID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Timezone:        s.Timezone,
		Duration:        s.Duration,
		Status:          string(s.Status),
		Location:        string(s.Meeting.Location),
		MeetingType:     string(s.Meeting.Type),
		MeetingLink:     s.Meeting.Link,
		Venue:           s.Meeting.Venue,
		Title:           s.Title,
		Description:     s.Description,
		Agenda:          s.Agenda,
		Feedback:        s.Feedback,
		StudentFeedback: s.StudentFeedback,
		MentorRating:    s.MentorRating,
		StudentRating:   s.StudentRating,
		RemindersSent:   append([]time.Time{}, s.RemindersSent...),
		ReminderTags:    make([]string, 0, len(s.ReminderTags)),
		LastModifiedBy:  s.LastModifiedBy,
		CompletedAt:     s.CompletedAt,
		CancelledAt:     s.CancelledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if viewerID == s.MentorID {
		dto.Notes = s.Notes
	}
	for _, t := range s.ReminderTags {
		dto.ReminderTags = append(dto.ReminderTags, string(t))
	}
	return dto
}

// ══════════════════════════════════════════════════════════════════════════════
// SLOT DTO
// ══════════════════════════════════════════════════════════════════════════════

// SlotDTO is the read model of an availability slot.
type SlotDTO struct {
	ID          string    `json:"id"`
	MentorID    string    `json:"mentorId"`
	DayOfWeek   int       `json:"dayOfWeek"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Location    string    `json:"location"`
	MeetingType string    `json:"meetingType"`
	MeetingLink string    `json:"meetingLink,omitempty"`
	Venue       string    `json:"venue,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewSlotDTO builds the read model of a slot.
func NewSlotDTO(s *availability.Slot) SlotDTO {
	return SlotDTO{
		ID:          s.ID,
		MentorID:    s.MentorID,
		DayOfWeek:   int(s.DayOfWeek),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Location:    string(s.Meeting.Location),
		MeetingType: string(s.Meeting.Type),
		MeetingLink: s.Meeting.Link,
		Venue:       s.Meeting.Venue,
		CreatedAt:   s.CreatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTO
// ══════════════════════════════════════════════════════════════════════════════

// RequestDTO is the read model of a mentorship request.
type RequestDTO struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId"`
	AlumniID    string     `json:"alumniId"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// NewRequestDTO builds the read model of a request.
func NewRequestDTO(r *mentorship.Request) RequestDTO {
	return RequestDTO{
		ID:          r.ID,
		StudentID:   r.StudentID,
		AlumniID:    r.AlumniID,
		Message:     r.Message,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
}
