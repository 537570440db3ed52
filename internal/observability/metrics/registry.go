// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track the rental and payment lifecycle
var (
	// RentalsCreatedTotal counts rentals created by payment provider
	RentalsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentals_created_total",
			Help: "Total number of rentals created",
		},
		[]string{"provider"},
	)

	// PaymentTransitionsTotal counts terminal payment status transitions
	PaymentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_transitions_total",
			Help: "Total number of payment status transitions applied",
		},
		[]string{"status"},
	)

	// PaymentDuplicateUpdatesTotal counts updates rejected because the
	// payment was already terminal (webhook replays, racing admin actions)
	PaymentDuplicateUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_duplicate_updates_total",
			Help: "Total number of payment updates skipped because the status was already final",
		},
	)

	// WebhooksReceivedTotal counts gateway webhooks by outcome
	WebhooksReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_received_total",
			Help: "Total number of payment gateway webhooks received",
		},
		[]string{"outcome"}, // applied, replay, invalid
	)

	// StaleRentalsExpiredTotal counts pending rentals failed by the worker sweep
	StaleRentalsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_rentals_expired_total",
			Help: "Total number of stale pending rentals expired by the worker",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RentalMetrics adapts the business counters to the rental service's
// recorder interface.
type RentalMetrics struct{}

func (RentalMetrics) RecordRentalCreated(provider string) {
	RentalsCreatedTotal.WithLabelValues(provider).Inc()
}

func (RentalMetrics) RecordStatusApplied(status string) {
	PaymentTransitionsTotal.WithLabelValues(status).Inc()
}

func (RentalMetrics) RecordDuplicateUpdate() {
	PaymentDuplicateUpdatesTotal.Inc()
}
