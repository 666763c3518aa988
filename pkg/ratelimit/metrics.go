package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for rate limit decisions.
type Metrics struct {
	checks        *prometheus.CounterVec
	denials       *prometheus.CounterVec
	failOpens     *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered on the default
// Prometheus registerer.
func NewMetrics() *Metrics {
	return &Metrics{
		checks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_ratelimit_checks_total",
				Help: "Total number of rate limit checks performed",
			},
			[]string{"scope", "result"},
		),

		denials: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_ratelimit_denials_total",
				Help: "Total number of denied rate limit checks",
			},
			[]string{"scope"},
		),

		failOpens: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_ratelimit_fail_open_total",
				Help: "Total number of checks admitted because the counting store was unreachable",
			},
			[]string{"scope"},
		),

		checkDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "janus_ratelimit_check_duration_seconds",
				Help:    "Latency of rate limit checks including the store round-trip",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scope"},
		),
	}
}

// observeCheck records one decision. Safe on a nil receiver so the
// limiter can run without metrics in tests.
func (m *Metrics) observeCheck(scope Scope, d Decision, elapsed time.Duration) {
	if m == nil {
		return
	}

	result := "allowed"
	if !d.Allowed {
		result = "denied"
		m.denials.WithLabelValues(string(scope)).Inc()
	}
	if d.FailedOpen {
		result = "fail_open"
		m.failOpens.WithLabelValues(string(scope)).Inc()
	}

	m.checks.WithLabelValues(string(scope), result).Inc()
	m.checkDuration.WithLabelValues(string(scope)).Observe(elapsed.Seconds())
}
