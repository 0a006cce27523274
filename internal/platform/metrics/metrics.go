package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SessionsCreated     prometheus.Counter
	SessionsInvalidated prometheus.Counter
	VerifyOutcomes      *prometheus.CounterVec
	VerifyDuration      prometheus.Histogram
	ConflictChecks      *prometheus.CounterVec
	Violations          prometheus.Counter
	DecryptFailures     prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers metrics on a caller-supplied registry.
// Tests use this to avoid duplicate registration panics.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "chamber_privilege_sessions_created_total",
			Help: "Total number of privilege sessions created",
		}),
		SessionsInvalidated: factory.NewCounter(prometheus.CounterOpts{
			Name: "chamber_privilege_sessions_invalidated_total",
			Help: "Total number of privilege sessions explicitly invalidated",
		}),
		VerifyOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chamber_session_verifications_total",
			Help: "Session verification attempts by outcome",
		}, []string{"outcome"}),
		VerifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chamber_session_verify_duration_seconds",
			Help:    "Latency of session verification",
			Buckets: prometheus.DefBuckets,
		}),
		ConflictChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chamber_conflict_checks_total",
			Help: "Conflict screening runs by result",
		}, []string{"result"}),
		Violations: factory.NewCounter(prometheus.CounterOpts{
			Name: "chamber_privilege_violations_total",
			Help: "Total number of privilege violations recorded in the audit log",
		}),
		DecryptFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chamber_decrypt_failures_total",
			Help: "Total number of failed decryption attempts on privileged content",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chamber_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// ObserveVerify records one verification outcome.
func (m *Metrics) ObserveVerify(outcome string, seconds float64) {
	m.VerifyOutcomes.WithLabelValues(outcome).Inc()
	m.VerifyDuration.Observe(seconds)
}
