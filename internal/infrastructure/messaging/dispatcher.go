// Package messaging delivers session notifications: it resolves recipients,
// renders templates in the recipient's timezone and pushes messages through a
// channel sender guarded by a circuit breaker.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
	"github.com/alem-hub/mentorship-hub/pkg/circuitbreaker"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// DeliveryObserver is told about every delivery attempt.
type DeliveryObserver interface {
	ObserveDelivery(kind notification.Kind, result notification.DeliveryResult)
}

// Dispatcher implements notification.Notifier synchronously.
type Dispatcher struct {
	users    user.Repository
	sender   notification.Sender
	breaker  *circuitbreaker.CircuitBreaker
	observer DeliveryObserver
	clock    timeutil.Clock
	log      *logger.Logger
}

// DispatcherConfig contains the Dispatcher collaborators.
type DispatcherConfig struct {
	Users    user.Repository
	Sender   notification.Sender
	Breaker  *circuitbreaker.CircuitBreaker // nil disables the breaker
	Observer DeliveryObserver               // optional
	Clock    timeutil.Clock
	Logger   *logger.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.SystemClock{}
	}
	return &Dispatcher{
		users:    cfg.Users,
		sender:   cfg.Sender,
		breaker:  cfg.Breaker,
		observer: cfg.Observer,
		clock:    cfg.Clock,
		log:      cfg.Logger.With(logger.Component("notifier")),
	}
}

var _ notification.Notifier = (*Dispatcher)(nil)

// Notify renders event for userID and sends it.
func (d *Dispatcher) Notify(ctx context.Context, userID string, event notification.Event) error {
	recipient, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("notify: failed to resolve recipient %s: %w", userID, err)
	}

	var loc *time.Location
	if recipient.Timezone != "" {
		if l, err := timeutil.LoadLocation(recipient.Timezone); err == nil {
			loc = l
		}
	}

	tpl, err := notification.Render(event, loc)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	msg := notification.Message{
		To:      recipient.Email,
		ToName:  recipient.DisplayName(),
		Subject: tpl.Subject,
		Body:    tpl.Body,
		Kind:    event.Kind,
	}

	send := func(ctx context.Context) error { return d.sender.Send(ctx, msg) }
	if d.breaker != nil {
		err = d.breaker.Execute(ctx, send)
	} else {
		err = send(ctx)
	}

	now := d.clock.Now()
	if err != nil {
		d.observe(event.Kind, notification.NewFailureResult(d.sender.Channel(), now, err, false))
		return fmt.Errorf("notify: %s via %s: %w", event.Kind, d.sender.Channel(), err)
	}

	d.observe(event.Kind, notification.NewSuccessResult(d.sender.Channel(), now))
	d.log.Debug("notification sent",
		logger.UserID(userID),
		logger.SessionID(event.Session.ID),
		logger.String("kind", event.Kind.String()),
	)
	return nil
}

func (d *Dispatcher) observe(kind notification.Kind, res notification.DeliveryResult) {
	if d.observer != nil {
		d.observer.ObserveDelivery(kind, res)
	}
}

// BreakerLogger returns a state-change hook that logs transitions.
func BreakerLogger(log *logger.Logger) func(name string, from, to circuitbreaker.State) {
	return func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}
}
