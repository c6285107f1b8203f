package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "barbershop"

var (
	once sync.Once

	appointmentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_events_total",
			Help:      "Appointment lifecycle transitions by event.",
		},
		[]string{"event"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because of an overlapping appointment.",
		},
	)

	availabilityCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_cache_total",
			Help:      "Free-slot cache lookups by result.",
		},
		[]string{"result"},
	)

	slotComputation = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slot_computation_seconds",
			Help:      "Time spent computing free slots for one staff day.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	auditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Audit events dropped because the queue was full.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			appointmentEvents,
			bookingConflicts,
			availabilityCache,
			slotComputation,
			httpRequests,
			auditDropped,
		)
	})
}

func IncAppointmentEvent(event string) {
	appointmentEvents.WithLabelValues(event).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncCacheHit() {
	availabilityCache.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	availabilityCache.WithLabelValues("miss").Inc()
}

func ObserveSlotComputation(d time.Duration) {
	slotComputation.Observe(d.Seconds())
}

func IncHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}

func IncAuditDropped() {
	auditDropped.Inc()
}
