// Package metrics exposes Prometheus instrumentation for booking outcomes,
// session changes, reminders, notification delivery and breaker state.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/mentorship-hub/pkg/circuitbreaker"
)

const namespace = "mentorship"

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	sessionsBooked      prometheus.Counter
	bookingsRejected    *prometheus.CounterVec
	sessionChanges      *prometheus.CounterVec
	remindersSent       *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec
	deliveries          *prometheus.CounterVec
	breakerState        *prometheus.GaugeVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	sweepDuration       prometheus.Histogram
}

// New creates the collectors. With withRuntime the Go runtime and process
// collectors are registered as well.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsBooked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_booked_total",
			Help:      "Sessions successfully booked",
		}),
		bookingsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Booking attempts rejected, by error code",
		}, []string{"code"}),
		sessionChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_changes_total",
			Help:      "Applied session updates, by change",
		}, []string{"change"}),
		remindersSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder tags claimed and dispatched",
		}, []string{"tag"}),
		notificationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Notifications the command side could not hand off",
		}, []string{"kind"}),
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_deliveries_total",
			Help:      "Notification delivery attempts, by kind, channel and outcome",
		}, []string{"kind", "channel", "outcome"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"breaker"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
		sweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_sweep_duration_seconds",
			Help:      "Reminder sweep duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
	}
}

var (
	_ command.Metrics            = (*Metrics)(nil)
	_ messaging.DeliveryObserver = (*Metrics)(nil)
)

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ─────────────────────────────────────────────────────────────────────────────
// command.Metrics
// ─────────────────────────────────────────────────────────────────────────────

func (m *Metrics) SessionBooked()                 { m.sessionsBooked.Inc() }
func (m *Metrics) BookingRejected(code string)    { m.bookingsRejected.WithLabelValues(code).Inc() }
func (m *Metrics) SessionChanged(change string)   { m.sessionChanges.WithLabelValues(change).Inc() }
func (m *Metrics) ReminderSent(tag string)        { m.remindersSent.WithLabelValues(tag).Inc() }
func (m *Metrics) NotificationFailed(kind string) { m.notificationsFailed.WithLabelValues(kind).Inc() }

// ─────────────────────────────────────────────────────────────────────────────
// Delivery, breaker, HTTP and sweep
// ─────────────────────────────────────────────────────────────────────────────

// ObserveDelivery counts one delivery attempt.
func (m *Metrics) ObserveDelivery(kind notification.Kind, result notification.DeliveryResult) {
	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	m.deliveries.WithLabelValues(kind.String(), string(result.Channel), outcome).Inc()
}

// BreakerStateChanged matches the circuitbreaker state-change hook.
func (m *Metrics) BreakerStateChanged(name string, _, to circuitbreaker.State) {
	var v float64
	switch to {
	case circuitbreaker.StateHalfOpen:
		v = 1
	case circuitbreaker.StateOpen:
		v = 2
	}
	m.breakerState.WithLabelValues(name).Set(v)
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveSweep records how long one reminder sweep took.
func (m *Metrics) ObserveSweep(elapsed time.Duration) {
	m.sweepDuration.Observe(elapsed.Seconds())
}
