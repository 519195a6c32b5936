// Package metrics exposes Prometheus instrumentation for the mission
// lifecycle. Handlers and the service record through the nil-safe methods
// so tests can pass a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the mission lifecycle instruments.
type Metrics struct {
	transitions        *prometheus.CounterVec
	transitionFailures *prometheus.CounterVec
	scans              *prometheus.CounterVec
	codeMismatches     prometheus.Counter
	transitionLatency  prometheus.Histogram
}

// New registers the mission metrics on the given registerer. Passing nil
// uses the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pickup_mission_transitions_total",
			Help: "Successful mission status transitions by target status",
		}, []string{"to"}),
		transitionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pickup_mission_transition_failures_total",
			Help: "Rejected mission transitions by error code",
		}, []string{"code"}),
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pickup_mission_scans_total",
			Help: "Manifest scan submissions by outcome",
		}, []string{"outcome"}),
		codeMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "pickup_mission_code_mismatches_total",
			Help: "Completion attempts rejected for a wrong code",
		}),
		transitionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pickup_mission_transition_duration_seconds",
			Help:    "Latency of the load-validate-save transition path",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordTransition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) RecordTransitionFailure(code string) {
	if m == nil {
		return
	}
	m.transitionFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordScan(outcome string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCodeMismatch() {
	if m == nil {
		return
	}
	m.codeMismatches.Inc()
}

func (m *Metrics) ObserveTransitionLatency(seconds float64) {
	if m == nil {
		return
	}
	m.transitionLatency.Observe(seconds)
}
