package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peercar",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peercar",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	conflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peercar",
			Name:      "booking_conflicts_total",
			Help:      "Rejected bookings by conflict kind.",
		},
		[]string{"kind"},
	)

	txRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "peercar",
			Name:      "booking_tx_retries_total",
			Help:      "Booking transactions retried after a serialization abort.",
		},
	)
)

// Booking outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Conflict kinds.
const (
	ConflictMember = "member"
	ConflictCar    = "car"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, conflicts, txRetries)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking increments the booking outcome counter.
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// IncConflict increments the conflict kind counter.
func IncConflict(kind string) {
	conflicts.WithLabelValues(kind).Inc()
}

// IncTxRetry counts a retried booking transaction.
func IncTxRetry() {
	txRetries.Inc()
}
