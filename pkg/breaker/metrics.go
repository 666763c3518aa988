package breaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for circuit breakers.
type Metrics struct {
	calls       *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on the default
// Prometheus registerer.
func NewMetrics() *Metrics {
	return &Metrics{
		calls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_breaker_calls_total",
				Help: "Total number of calls executed through a circuit breaker",
			},
			[]string{"breaker", "result"},
		),

		rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_breaker_rejections_total",
				Help: "Total number of calls rejected while a breaker was open",
			},
			[]string{"breaker"},
		),

		transitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_breaker_transitions_total",
				Help: "Total number of breaker state transitions",
			},
			[]string{"breaker", "from", "to"},
		),
	}
}

// observeCall records an executed call. Safe on a nil receiver.
func (m *Metrics) observeCall(name string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.calls.WithLabelValues(name, result).Inc()
}

// observeRejection records an open-circuit rejection. Safe on a nil
// receiver.
func (m *Metrics) observeRejection(name string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(name).Inc()
}

// observeTransition records a state transition. Safe on a nil receiver.
func (m *Metrics) observeTransition(name string, from, to State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name, string(from), string(to)).Inc()
}
