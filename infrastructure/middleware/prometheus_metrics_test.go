package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-rankings/internal/ports"
)

// newTestMetrics registers against a private registry so tests never
// collide on metric names.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	assert.NotNil(t, pm.computations)
	assert.NotNil(t, pm.trials)
	assert.NotNil(t, pm.swapsPerTrial)
	assert.NotNil(t, pm.executionLatency)
	assert.NotNil(t, pm.operationCounter)
	assert.NotNil(t, pm.systemGauges)
	assert.NotNil(t, pm.values)

	var _ ports.MetricsCollector = pm
}

func TestNewPrometheusMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)
	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordCounter(MetricComputations, 1, map[string]string{"status": "success"})
	pm.RecordCounter(MetricComputations, 1, map[string]string{"status": "success"})
	pm.RecordCounter(MetricComputations, 1, map[string]string{"status": "input_error"})
	pm.RecordCounter(MetricTrials, 1000, nil)
	pm.RecordCounter("schedule_fetch_total", 1, map[string]string{"status": "error"})
	pm.RecordCounter("cache_writes_total", 1, nil)

	assert.InDelta(t, 2, testutil.ToFloat64(pm.computations.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.computations.WithLabelValues("input_error")), 1e-9)
	assert.InDelta(t, 1000, testutil.ToFloat64(pm.trials), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.operationCounter.WithLabelValues("schedule_fetch_total", "error")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.operationCounter.WithLabelValues("cache_writes_total", "unknown")), 1e-9)
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordGauge(MetricEntities, 134, map[string]string{"season": "2025"})
	pm.RecordGauge(MetricEntities, 136, map[string]string{"season": "2025"})
	pm.RecordGauge(MetricEntities, 130, map[string]string{"season": "2024"})

	assert.InDelta(t, 136, testutil.ToFloat64(pm.systemGauges.WithLabelValues(MetricEntities, "2025")), 1e-9)
	assert.InDelta(t, 130, testutil.ToFloat64(pm.systemGauges.WithLabelValues(MetricEntities, "2024")), 1e-9)
}

func TestPrometheusMetrics_Histograms(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordLatency("compute_ranking", 120*time.Millisecond, map[string]string{"status": "success"})
	pm.RecordLatency("schedule_fetch", 2*time.Second, nil)
	pm.RecordHistogram(MetricSwapsPerTrial, 37.5, nil)
	pm.RecordHistogram("outcomes_per_season", 840, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]uint64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				counts[mf.GetName()] += h.GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(2), counts["ranking_operation_duration_seconds"])
	assert.Equal(t, uint64(1), counts[MetricSwapsPerTrial])
	assert.Equal(t, uint64(1), counts["ranking_observed_values"])
}
