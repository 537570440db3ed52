package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics receives limiter events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// RecordCheck counts one Check call. outcome is "allowed" or "denied".
	RecordCheck(class, outcome string)
	// RecordSweep counts entries removed by one cleanup pass.
	RecordSweep(removed int)
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) RecordCheck(string, string) {}
func (NoopMetrics) RecordSweep(int)            {}

// PrometheusMetrics exports limiter events as Prometheus counters.
type PrometheusMetrics struct {
	checks *prometheus.CounterVec
	swept  prometheus.Counter
}

// NewPrometheusMetrics registers the limiter collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_checks_total",
			Help: "Rate limit checks by limit class and outcome.",
		}, []string{"class", "outcome"}),
		swept: factory.NewCounter(prometheus.CounterOpts{
			Name: "ratelimit_entries_swept_total",
			Help: "Expired rate limit entries removed by the cleanup task.",
		}),
	}
}

func (m *PrometheusMetrics) RecordCheck(class, outcome string) {
	m.checks.WithLabelValues(class, outcome).Inc()
}

func (m *PrometheusMetrics) RecordSweep(removed int) {
	m.swept.Add(float64(removed))
}
