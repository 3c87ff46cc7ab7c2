package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/mentorship-hub/pkg/circuitbreaker"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// captureSender records messages and fails while err is set.
type captureSender struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (c *captureSender) Channel() notification.ChannelType { return notification.ChannelTypeLog }

func (c *captureSender) Send(_ context.Context, msg notification.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) messages() []notification.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notification.Message(nil), c.sent...)
}

type countingObserver struct {
	ok, failed int
}

func (o *countingObserver) ObserveDelivery(_ notification.Kind, r notification.DeliveryResult) {
	if r.Success {
		o.ok++
	} else {
		o.failed++
	}
}

func sampleSession() *session.Session {
	return &session.Session{
		ID:        "s1",
		StudentID: "st1",
		MentorID:  "m1",
		Title:     "Resume review",
		StartTime: time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC),
		Timezone:  "UTC",
		Status:    session.StatusScheduled,
	}
}

func seededUsers() *memory.Store {
	store := memory.NewStore()
	store.PutUser(&user.User{ID: "st1", Name: "Aru", Email: "aru@example.com", Role: shared.RoleStudent, Timezone: "America/New_York"})
	store.PutUser(&user.User{ID: "m1", Email: "mentor@example.com", Role: shared.RoleAlumni, Timezone: "Nowhere/Invalid"})
	return store
}

func TestDispatcherRendersInRecipientTimezone(t *testing.T) {
	store := seededUsers()
	sender := &captureSender{}
	obs := &countingObserver{}
	d := NewDispatcher(DispatcherConfig{Users: store.Users(), Sender: sender, Observer: obs})

	ev := notification.Event{Kind: notification.KindSessionScheduled, Session: sampleSession()}
	require.NoError(t, d.Notify(context.Background(), "st1", ev))
	require.NoError(t, d.Notify(context.Background(), "m1", ev))

	msgs := sender.messages()
	require.Len(t, msgs, 2)

	assert.Equal(t, "aru@example.com", msgs[0].To)
	assert.Equal(t, "Aru", msgs[0].ToName)
	assert.Contains(t, msgs[0].Body, "Jan 6, 2026 at 10:00 AM EST")

	// unknown zone falls back to the session's zone
	assert.Equal(t, "mentor@example.com", msgs[1].ToName)
	assert.Contains(t, msgs[1].Body, "3:00 PM UTC")

	assert.Equal(t, 2, obs.ok)
}

func TestDispatcherUnknownRecipient(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{Users: seededUsers().Users(), Sender: &captureSender{}})

	err := d.Notify(context.Background(), "ghost", notification.Event{Kind: notification.KindSessionScheduled, Session: sampleSession()})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDispatcherBreakerOpensOnSenderFailure(t *testing.T) {
	clock := timeutil.NewFixedClock(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC))
	sender := &captureSender{err: errors.New("smtp: 421 service not available")}
	obs := &countingObserver{}
	breaker := circuitbreaker.New("smtp", circuitbreaker.WithFailureThreshold(2), circuitbreaker.WithClock(clock))
	d := NewDispatcher(DispatcherConfig{Users: seededUsers().Users(), Sender: sender, Breaker: breaker, Observer: obs, Clock: clock})

	ev := notification.Event{Kind: notification.KindSessionCancelled, Session: sampleSession()}
	ctx := context.Background()

	assert.Error(t, d.Notify(ctx, "st1", ev))
	assert.Error(t, d.Notify(ctx, "st1", ev))
	assert.ErrorIs(t, d.Notify(ctx, "st1", ev), circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 3, obs.failed)
}

func TestQueueDeliversAndDrains(t *testing.T) {
	rec := NewRecorder()
	q := NewQueue(rec, QueueConfig{Workers: 2, Buffer: 8})

	s := sampleSession()
	for _, id := range []string{"st1", "m1"} {
		require.NoError(t, q.Notify(context.Background(), id, notification.Event{Kind: notification.KindSessionScheduled, Session: s}))
	}
	s.Title = "changed after enqueue"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Close(ctx))

	got := rec.Deliveries()
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, "Resume review", d.Event.Session.Title)
	}

	assert.ErrorIs(t, q.Notify(context.Background(), "st1", notification.Event{}), ErrQueueClosed)
}

// blockingNotifier holds every call until release is closed.
type blockingNotifier struct {
	release chan struct{}
}

func (b *blockingNotifier) Notify(ctx context.Context, _ string, _ notification.Event) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestQueueDropsWhenFull(t *testing.T) {
	block := &blockingNotifier{release: make(chan struct{})}
	var dropped []notification.Kind
	var mu sync.Mutex
	q := NewQueue(block, QueueConfig{Workers: 1, Buffer: 1, OnDropped: func(k notification.Kind) {
		mu.Lock()
		dropped = append(dropped, k)
		mu.Unlock()
	}})

	ev := notification.Event{Kind: notification.KindSessionReminder, Session: sampleSession()}
	ctx := context.Background()

	var full error
	for i := 0; i < 5 && full == nil; i++ {
		full = q.Notify(ctx, "st1", ev)
	}
	assert.ErrorIs(t, full, ErrQueueFull)

	close(block.release)
	require.NoError(t, q.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, dropped)
	assert.Equal(t, notification.KindSessionReminder, dropped[0])
}

func TestRecorderFailFor(t *testing.T) {
	rec := NewRecorder()
	boom := errors.New("boom")
	rec.FailFor("m1", boom)

	ev := notification.Event{Kind: notification.KindFeedbackReceived, Session: sampleSession()}
	assert.NoError(t, rec.Notify(context.Background(), "st1", ev))
	assert.ErrorIs(t, rec.Notify(context.Background(), "m1", ev), boom)

	assert.Len(t, rec.Deliveries(), 2)
	assert.Len(t, rec.Of(notification.KindFeedbackReceived), 2)
	assert.Empty(t, rec.Of(notification.KindSessionReminder))

	rec.Reset()
	assert.Empty(t, rec.Deliveries())
}

func TestEmailSenderRejectsCancelledContextAndBlankAddress(t *testing.T) {
	s := NewEmailSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "hub@example.com"})
	assert.Equal(t, notification.ChannelTypeEmail, s.Channel())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, notification.Message{To: "a@example.com"}), context.Canceled)

	assert.Error(t, s.Send(context.Background(), notification.Message{}))
}
