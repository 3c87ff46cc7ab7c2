package messaging

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASYNC QUEUE
// Moves delivery off the request path. Jobs are held in memory only; a
// process crash loses what is still queued.
// ══════════════════════════════════════════════════════════════════════════════

// ErrQueueFull is returned when the buffer has no room.
var ErrQueueFull = errors.New("messaging: notification queue is full")

// ErrQueueClosed is returned after Close.
var ErrQueueClosed = errors.New("messaging: notification queue is closed")

// QueueConfig contains Queue settings.
type QueueConfig struct {
	Workers   int
	Buffer    int
	Timeout   time.Duration // per delivery
	Logger    *logger.Logger
	OnDropped func(kind notification.Kind)
}

// DefaultQueueConfig returns sensible defaults.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Workers: 4,
		Buffer:  256,
		Timeout: 30 * time.Second,
	}
}

type job struct {
	userID string
	event  notification.Event
}

// Queue implements notification.Notifier by handing events to a pool of
// workers that call the wrapped notifier.
type Queue struct {
	next notification.Notifier
	cfg  QueueConfig
	log  *logger.Logger

	jobs   chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewQueue starts the workers.
func NewQueue(next notification.Notifier, cfg QueueConfig) *Queue {
	def := DefaultQueueConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = def.Buffer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	q := &Queue{
		next: next,
		cfg:  cfg,
		log:  cfg.Logger.With(logger.Component("notification-queue")),
		jobs: make(chan job, cfg.Buffer),
	}
	for i := 0; i < cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

var _ notification.Notifier = (*Queue)(nil)

// Notify enqueues the event without blocking. A snapshot of the session is
// taken so later mutations do not leak into the rendered message.
func (q *Queue) Notify(_ context.Context, userID string, event notification.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	if event.Session != nil {
		event.Session = event.Session.Clone()
	}

	select {
	case q.jobs <- job{userID: userID, event: event}:
		return nil
	default:
		if q.cfg.OnDropped != nil {
			q.cfg.OnDropped(event.Kind)
		}
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until queued ones are delivered or
// ctx expires.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("messaging: queue drain interrupted: %w", ctx.Err())
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.deliver(j)
	}
}

func (q *Queue) deliver(j job) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("notification delivery panic recovered",
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Timeout)
	defer cancel()

	if err := q.next.Notify(ctx, j.userID, j.event); err != nil {
		q.log.Warn("queued notification failed",
			logger.UserID(j.userID),
			logger.String("kind", j.event.Kind.String()),
			logger.Err(err),
		)
	}
}
