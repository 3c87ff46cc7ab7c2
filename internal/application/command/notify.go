// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// Metrics receives counters from command handlers.
type Metrics interface {
	SessionBooked()
	BookingRejected(code string)
	SessionChanged(change string)
	ReminderSent(tag string)
	NotificationFailed(kind string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) SessionBooked()            {}
func (NopMetrics) BookingRejected(string)    {}
func (NopMetrics) SessionChanged(string)     {}
func (NopMetrics) ReminderSent(string)       {}
func (NopMetrics) NotificationFailed(string) {}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION FAN-OUT
// ══════════════════════════════════════════════════════════════════════════════

// fanout sends an event to a list of users. Delivery failures are logged and
// counted, never returned: the mutation that raised the event has already
// been committed.
type fanout struct {
	notifier notification.Notifier
	log      *logger.Logger
	metrics  Metrics
}

func newFanout(n notification.Notifier, log *logger.Logger, m Metrics) fanout {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = NopMetrics{}
	}
	return fanout{notifier: n, log: log, metrics: m}
}

// send returns the number of users successfully notified.
func (f fanout) send(ctx context.Context, event notification.Event, userIDs ...string) int {
	if f.notifier == nil {
		return 0
	}

	sent := 0
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if err := f.notifier.Notify(ctx, id, event); err != nil {
			f.metrics.NotificationFailed(event.Kind.String())
			f.log.Warn("notification failed",
				logger.UserID(id),
				logger.SessionID(event.Session.ID),
				logger.String("kind", event.Kind.String()),
				logger.Err(err),
			)
			continue
		}
		sent++
	}
	return sent
}

// except filters out skip from ids.
func except(skip string, ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}
