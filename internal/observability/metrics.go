package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "booking"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	errorCount          *prometheus.CounterVec
	reservationsCreated *prometheus.CounterVec
	bookingRejections   *prometheus.CounterVec
	statusChanges       *prometheus.CounterVec
	availabilityQueries *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route, method and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		errorCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Error responses by route, method and error code.",
			},
			[]string{"route", "method", "code"},
		),
		reservationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservations_created_total",
				Help:      "Reservations committed, by assignment mode.",
			},
			[]string{"mode"},
		),
		bookingRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_rejections_total",
				Help:      "Booking commands rejected, by error code.",
			},
			[]string{"code"},
		),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservation_status_changes_total",
				Help:      "Reservation status transitions, by target status.",
			},
			[]string{"status"},
		),
		availabilityQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_queries_total",
				Help:      "Availability resolutions, by mode.",
			},
			[]string{"mode"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.errorCount,
		m.reservationsCreated,
		m.bookingRejections,
		m.statusChanges,
		m.availabilityQueries,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest observes the latency of a served request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(route, method, code).Inc()
}

// ReservationCreated counts a committed booking. mode is "staff" when the
// caller picked the staff member and "auto" when it was assigned.
func (m *Metrics) ReservationCreated(mode string) {
	if m == nil {
		return
	}
	m.reservationsCreated.WithLabelValues(mode).Inc()
}

// BookingRejected counts a failed booking command by error code.
func (m *Metrics) BookingRejected(code string) {
	if m == nil {
		return
	}
	m.bookingRejections.WithLabelValues(code).Inc()
}

// StatusChanged counts a reservation status transition.
func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// AvailabilityQueried counts an availability resolution.
func (m *Metrics) AvailabilityQueried(mode string) {
	if m == nil {
		return
	}
	m.availabilityQueries.WithLabelValues(mode).Inc()
}
