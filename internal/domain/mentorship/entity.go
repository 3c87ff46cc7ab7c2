// Package mentorship models requests linking a student with an alumni mentor.
// A session can only be booked against an ACCEPTED request.
package mentorship

import (
	"context"
	"strings"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the state of a mentorship request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrRequestNotFound  = shared.NewDomainError("mentorship", "Find", shared.ErrNotFound, "REQUEST_NOT_FOUND", "mentorship request not found")
	ErrPendingExists    = shared.NewDomainError("mentorship", "Create", shared.ErrAlreadyExists, "PENDING_REQUEST_EXISTS", "a pending request to this mentor already exists")
	ErrMessageRequired  = shared.NewDomainError("mentorship", "Create", shared.ErrEmptyValue, "MESSAGE_REQUIRED", "a message is required")
	ErrMessageTooLong   = shared.NewDomainError("mentorship", "Create", shared.ErrValueOutOfRange, "MESSAGE_TOO_LONG", "message is too long")
	ErrOnlyStudents     = shared.NewDomainError("mentorship", "Create", shared.ErrUnauthorized, "UNAUTHORIZED", "only students can send mentorship requests")
	ErrOnlyAlumni       = shared.NewDomainError("mentorship", "Respond", shared.ErrUnauthorized, "UNAUTHORIZED", "only alumni can respond to mentorship requests")
	ErrNotAMentor       = shared.NewDomainError("mentorship", "Create", shared.ErrInvalidInput, "ALUMNI_NOT_FOUND", "the addressed user is not an alumni mentor")
	ErrInvalidResponse  = shared.NewDomainError("mentorship", "Respond", shared.ErrValidation, "INVALID_STATUS", "response must be ACCEPTED or REJECTED")
	ErrAlreadyResponded = shared.NewDomainError("mentorship", "Respond", shared.ErrStateTransition, "REQUEST_ALREADY_RESPONDED", "the request was already answered")
)

// MaxMessageLength bounds the request message.
const MaxMessageLength = 2000

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST
// ══════════════════════════════════════════════════════════════════════════════

// Request asks an alumni to mentor a student.
type Request struct {
	ID          string
	StudentID   string
	AlumniID    string
	Message     string
	Status      Status
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// NewRequest creates a PENDING request.
func NewRequest(id, studentID, alumniID, message string, now time.Time) (*Request, error) {
	if studentID == "" || alumniID == "" {
		return nil, shared.NewDomainError("mentorship", "Create", shared.ErrInvalidID, "MISSING_PARTICIPANT", "student and alumni are required")
	}
	if studentID == alumniID {
		return nil, shared.NewDomainError("mentorship", "Create", shared.ErrInvalidInput, "SELF_REQUEST", "cannot request mentorship from yourself")
	}
	msg := strings.TrimSpace(message)
	if msg == "" {
		return nil, ErrMessageRequired
	}
	if len(msg) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	return &Request{
		ID:        id,
		StudentID: studentID,
		AlumniID:  alumniID,
		Message:   msg,
		Status:    StatusPending,
		CreatedAt: now.UTC(),
	}, nil
}

// Respond moves a PENDING request to ACCEPTED or REJECTED. Terminal requests
// cannot be answered again.
func (r *Request) Respond(status Status, now time.Time) error {
	if status != StatusAccepted && status != StatusRejected {
		return ErrInvalidResponse
	}
	if r.Status != StatusPending {
		return ErrAlreadyResponded
	}
	at := now.UTC()
	r.Status = status
	r.RespondedAt = &at
	return nil
}

// Accept is shorthand for Respond(StatusAccepted, now).
func (r *Request) Accept(now time.Time) error { return r.Respond(StatusAccepted, now) }

// Reject is shorthand for Respond(StatusRejected, now).
func (r *Request) Reject(now time.Time) error { return r.Respond(StatusRejected, now) }

// IsAccepted reports whether the request allows booking sessions.
func (r *Request) IsAccepted() bool { return r.Status == StatusAccepted }

// IsVisibleTo reports whether userID is the student or the alumni.
func (r *Request) IsVisibleTo(userID string) bool {
	return userID != "" && (r.StudentID == userID || r.AlumniID == userID)
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ListFilter narrows a user's request list. Role decides whether UserID is
// matched against the student or the alumni side.
type ListFilter struct {
	UserID string
	Role   shared.Role
	Status Status
}

// Repository persists mentorship requests.
type Repository interface {
	// Create returns ErrPendingExists when the pair already has a PENDING request.
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)

	// Update saves a response. It applies only while the stored request is
	// still PENDING and returns ErrRequestNotFound otherwise.
	Update(ctx context.Context, r *Request) error

	// FindPending returns the PENDING request between the pair, or ErrRequestNotFound.
	FindPending(ctx context.Context, studentID, alumniID string) (*Request, error)

	// FindAccepted returns an ACCEPTED request between the pair, or ErrRequestNotFound.
	FindAccepted(ctx context.Context, studentID, alumniID string) (*Request, error)

	// ListForUser returns requests newest first.
	ListForUser(ctx context.Context, f ListFilter) ([]*Request, error)
}
