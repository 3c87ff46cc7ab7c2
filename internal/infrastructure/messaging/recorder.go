package messaging

import (
	"context"
	"sync"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
)

// Delivery is one call recorded by Recorder.
type Delivery struct {
	UserID string
	Event  notification.Event
}

// Recorder is a notifier that keeps every call in memory. Calls for users in
// FailFor return the configured error after being recorded.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
	failFor    map[string]error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{failFor: make(map[string]error)}
}

var _ notification.Notifier = (*Recorder)(nil)

// Notify records the call.
func (r *Recorder) Notify(_ context.Context, userID string, event notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Session != nil {
		event.Session = event.Session.Clone()
	}
	r.deliveries = append(r.deliveries, Delivery{UserID: userID, Event: event})
	return r.failFor[userID]
}

// FailFor makes every later call for userID return err.
func (r *Recorder) FailFor(userID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[userID] = err
}

// Deliveries returns a copy of all recorded calls.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

// Of returns the calls of the given kind.
func (r *Recorder) Of(kind notification.Kind) []Delivery {
	var out []Delivery
	for _, d := range r.Deliveries() {
		if d.Event.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}
