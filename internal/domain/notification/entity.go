// Package notification contains the notification model of the mentorship hub:
// the event kinds raised by the session lifecycle, message templates and the
// contracts for delivery channels.
package notification

import (
	"context"
	"errors"

	"github.com/alem-hub/mentorship-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// KIND
// ══════════════════════════════════════════════════════════════════════════════

// Kind identifies what happened to a session.
type Kind string

const (
	// KindSessionScheduled goes to every participant except the creator.
	KindSessionScheduled Kind = "SESSION_SCHEDULED"

	// KindSessionUpdated goes to the other participant after a reschedule or edit.
	KindSessionUpdated Kind = "SESSION_UPDATED"

	// KindSessionCancelled goes to the other participant.
	KindSessionCancelled Kind = "SESSION_CANCELLED"

	// KindSessionCompleted goes to the student.
	KindSessionCompleted Kind = "SESSION_COMPLETED"

	// KindSessionReminder goes to both participants at each lead time.
	KindSessionReminder Kind = "SESSION_REMINDER"

	// KindFeedbackReceived goes to the mentor.
	KindFeedbackReceived Kind = "FEEDBACK_RECEIVED"
)

// IsValid checks if the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindSessionScheduled, KindSessionUpdated, KindSessionCancelled,
		KindSessionCompleted, KindSessionReminder, KindFeedbackReceived:
		return true
	default:
		return false
	}
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT
// ══════════════════════════════════════════════════════════════════════════════

// Event is what the engine hands to a Notifier. Lead is set for reminders only.
type Event struct {
	Kind    Kind
	Session *session.Session
	Lead    *session.ReminderLead
}

// ErrInvalidEvent is returned by notifiers for events they cannot render.
var ErrInvalidEvent = errors.New("notification: invalid event")

// Validate checks the event can be rendered.
func (e Event) Validate() error {
	if !e.Kind.IsValid() || e.Session == nil {
		return ErrInvalidEvent
	}
	if e.Kind == KindSessionReminder && e.Lead == nil {
		return ErrInvalidEvent
	}
	return nil
}

// Notifier delivers an event to one user. From the engine's point of view it
// is fire-and-forget: callers log errors and carry on.
type Notifier interface {
	Notify(ctx context.Context, userID string, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, userID string, event Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, userID string, event Event) error {
	return f(ctx, userID, event)
}
