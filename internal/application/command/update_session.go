package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/mentorship-hub/internal/application/scheduling"
	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SESSION COMMAND
// Applies a lifecycle change (cancel, complete, feedback, reschedule, edit)
// to an existing session.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSessionCommand contains the requested change.
type UpdateSessionCommand struct {
	Actor     shared.Actor
	SessionID string
	Patch     session.Patch
}

// Validate validates the command.
func (c UpdateSessionCommand) Validate() error {
	if err := c.Actor.Validate(); err != nil {
		return err
	}
	if c.SessionID == "" {
		return session.ErrInvalidSessionID
	}
	return nil
}

// UpdateSessionResult contains the updated session.
type UpdateSessionResult struct {
	Session       *session.Session
	Changes       []session.Change
	NotifiedCount int
}

// UpdateSessionHandler handles UpdateSessionCommand.
type UpdateSessionHandler struct {
	sessions session.Repository
	tx       session.Transactor
	engine   *scheduling.Engine
	notify   fanout
	metrics  Metrics
}

// NewUpdateSessionHandler creates a new UpdateSessionHandler.
func NewUpdateSessionHandler(
	sessions session.Repository,
	tx session.Transactor,
	engine *scheduling.Engine,
	notifier notification.Notifier,
	log *logger.Logger,
	metrics Metrics,
) *UpdateSessionHandler {
	f := newFanout(notifier, log, metrics)
	return &UpdateSessionHandler{
		sessions: sessions,
		tx:       tx,
		engine:   engine,
		notify:   f,
		metrics:  f.metrics,
	}
}

// Handle executes the update session command.
func (h *UpdateSessionHandler) Handle(ctx context.Context, cmd UpdateSessionCommand) (*UpdateSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	current, err := h.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if !current.IsParty(cmd.Actor.UserID) {
		return nil, session.ErrSessionNotFound
	}

	var m *session.Mutation
	err = h.tx.InTx(ctx, current.Participants(), func(ctx context.Context) error {
		// Re-read under the locks so the change applies to the latest state.
		s, err := h.sessions.GetByID(ctx, cmd.SessionID)
		if err != nil {
			return err
		}

		now := h.engine.Now()
		m, err = session.Apply(s, cmd.Actor, cmd.Patch, now)
		if err != nil {
			return err
		}

		if m.Rescheduled {
			next := m.Session
			if err := session.ValidateTime(next.StartTime, next.EndTime, next.Timezone, now); err != nil {
				return err
			}
			if err := h.engine.CheckPlacement(ctx, m.Candidate(), next.Timezone); err != nil {
				return err
			}
		}

		return h.sessions.Update(ctx, m.Session)
	})
	if err != nil {
		if shared.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("update_session: %w", err)
	}

	for _, c := range m.Changes {
		h.metrics.SessionChanged(string(c))
	}

	return &UpdateSessionResult{
		Session:       m.Session,
		Changes:       m.Changes,
		NotifiedCount: h.notifyChange(ctx, cmd.Actor.UserID, m),
	}, nil
}

// notifyChange picks the event and recipients for a committed mutation.
func (h *UpdateSessionHandler) notifyChange(ctx context.Context, actorID string, m *session.Mutation) int {
	s := m.Session
	other := s.OtherParty(actorID)

	switch {
	case m.Has(session.ChangeCancel):
		return h.notify.send(ctx, notification.Event{Kind: notification.KindSessionCancelled, Session: s}, other)
	case m.Has(session.ChangeComplete):
		return h.notify.send(ctx, notification.Event{Kind: notification.KindSessionCompleted, Session: s}, s.StudentID)
	case m.Has(session.ChangeFeedback):
		return h.notify.send(ctx, notification.Event{Kind: notification.KindFeedbackReceived, Session: s}, s.MentorID)
	case m.Has(session.ChangeReschedule), m.Has(session.ChangeEditDetails):
		return h.notify.send(ctx, notification.Event{Kind: notification.KindSessionUpdated, Session: s}, other)
	default:
		return 0
	}
}
