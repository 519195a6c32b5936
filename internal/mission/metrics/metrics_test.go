package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordTransition("completed")
	m.RecordTransition("completed")
	m.RecordTransitionFailure("illegal_transition")
	m.RecordScan("scanned")
	m.RecordScan("not_found")
	m.RecordCodeMismatch()
	m.ObserveTransitionLatency(0.012)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitionFailures.WithLabelValues("illegal_transition")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.scans.WithLabelValues("scanned")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.scans.WithLabelValues("not_found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.codeMismatches))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordTransition("completed")
	m.RecordTransitionFailure("illegal_transition")
	m.RecordScan("scanned")
	m.RecordCodeMismatch()
	m.ObserveTransitionLatency(0.001)
}
