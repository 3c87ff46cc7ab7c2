package command

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND REMINDERS COMMAND
// Periodic sweep over upcoming sessions. Each lead-time reminder is claimed
// in storage before it is sent, so overlapping sweeps never double-send.
// ══════════════════════════════════════════════════════════════════════════════

// SweepResult summarizes one sweep.
type SweepResult struct {
	SessionsScanned int
	RemindersSent   int // claimed and dispatched reminders
	AlreadyClaimed  int // due but recorded by a concurrent sweep
	Notifications   int // successful deliveries, two per reminder at most
	Errors          int
	Duration        time.Duration
}

// SendRemindersHandler runs reminder sweeps.
type SendRemindersHandler struct {
	sessions session.Repository
	notify   fanout
	metrics  Metrics
	log      *logger.Logger
}

// NewSendRemindersHandler creates a new SendRemindersHandler.
func NewSendRemindersHandler(
	sessions session.Repository,
	notifier notification.Notifier,
	log *logger.Logger,
	metrics Metrics,
) *SendRemindersHandler {
	f := newFanout(notifier, log, metrics)
	return &SendRemindersHandler{
		sessions: sessions,
		notify:   f,
		metrics:  f.metrics,
		log:      f.log,
	}
}

// Sweep dispatches every reminder due at now that has not been sent yet.
// Calling it repeatedly with the same now sends nothing new.
func (h *SendRemindersHandler) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	started := time.Now()
	now = now.UTC()

	upcoming, err := h.sessions.FindUpcomingScheduled(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("send_reminders: failed to load sessions: %w", err)
	}

	result := &SweepResult{SessionsScanned: len(upcoming)}

	for _, s := range upcoming {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(started)
			return result, fmt.Errorf("send_reminders: %w", err)
		}

		for _, lead := range s.DueReminders(now) {
			claimed, err := h.sessions.ClaimReminder(ctx, s.ID, lead.Tag, now)
			if err != nil {
				result.Errors++
				h.log.Error("failed to claim reminder",
					logger.SessionID(s.ID),
					logger.String("lead", string(lead.Tag)),
					logger.Err(err),
				)
				continue
			}
			if !claimed {
				result.AlreadyClaimed++
				continue
			}

			s.RecordReminder(lead.Tag, now)
			lead := lead
			result.RemindersSent++
			h.metrics.ReminderSent(string(lead.Tag))
			result.Notifications += h.notify.send(ctx,
				notification.Event{Kind: notification.KindSessionReminder, Session: s, Lead: &lead},
				s.Participants()...,
			)
		}
	}

	result.Duration = time.Since(started)
	return result, nil
}
