package session

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// OverlapQuery selects SCHEDULED sessions of the mentor or the student whose
// range intersects Window, leaving out ExcludeID.
type OverlapQuery struct {
	MentorID  string
	StudentID string
	Window    Window
	ExcludeID string
}

// ListFilter narrows a participant's session list. From and To bound the
// start time inclusively when set.
type ListFilter struct {
	UserID string
	Status Status
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Repository persists sessions.
type Repository interface {
	// Create stores a new session.
	// Returns ErrSchedulingConflict when the storage overlap guard rejects
	// the row.
	Create(ctx context.Context, s *Session) error

	// GetByID returns ErrSessionNotFound when the session does not exist.
	GetByID(ctx context.Context, id string) (*Session, error)

	// Update overwrites every mutable field of an existing session.
	Update(ctx context.Context, s *Session) error

	// FindOverlapping returns candidates for the conflict check.
	FindOverlapping(ctx context.Context, q OverlapQuery) ([]*Session, error)

	// FindUpcomingScheduled returns SCHEDULED sessions starting after now.
	// Implementations may leave out sessions further away than the longest
	// reminder lead.
	FindUpcomingScheduled(ctx context.Context, now time.Time) ([]*Session, error)

	// ClaimReminder atomically records tag and at on the session if the tag
	// is absent. It reports whether this call recorded it.
	ClaimReminder(ctx context.Context, id string, tag ReminderTag, at time.Time) (bool, error)

	// ListForParticipant returns sessions of the user ordered by start time
	// descending.
	ListForParticipant(ctx context.Context, f ListFilter) ([]*Session, error)
}

// Transactor runs fn atomically while holding exclusive locks on lockKeys.
// Repositories called with the ctx passed to fn take part in the transaction.
type Transactor interface {
	InTx(ctx context.Context, lockKeys []string, fn func(ctx context.Context) error) error
}
