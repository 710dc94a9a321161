// Package middleware provides cross-cutting concerns for ranking
// computations and schedule loading.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-rankings/internal/ports"
)

// Metric names with dedicated Prometheus series. Anything else is routed to
// the generic operation, gauge and value vectors.
const (
	MetricComputations  = "ranking_computations_total"
	MetricTrials        = "ranking_trials_total"
	MetricSwapsPerTrial = "ranking_swaps_per_trial"
	MetricEntities      = "ranking_entities"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks ranking computations, the volume of simulated trials and the
// latency of schedule fetches.
type PrometheusMetrics struct {
	computations     *prometheus.CounterVec
	trials           prometheus.Counter
	swapsPerTrial    prometheus.Histogram
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	values           *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors with reg. A nil reg uses the default Prometheus registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		computations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricComputations,
				Help: "Total number of ranking computations by outcome.",
			},
			[]string{"status"},
		),
		trials: factory.NewCounter(
			prometheus.CounterOpts{
				Name: MetricTrials,
				Help: "Total number of simulated trials across all computations.",
			},
		),
		swapsPerTrial: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricSwapsPerTrial,
				Help:    "Mean number of corrective swaps applied per trial in a computation.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
		),

		// General execution metrics.
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranking_operation_duration_seconds",
				Help:    "Execution time of ranking and schedule operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranking_operations_total",
				Help: "Total number of operations performed, by metric name and status.",
			},
			[]string{"operation", "status"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ranking_system_state",
				Help: "Most recent values of ranking state gauges.",
			},
			[]string{"metric", "season"},
		),
		values: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranking_observed_values",
				Help:    "Distribution of values recorded without a dedicated histogram.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

func status(labels map[string]string) string {
	if s := labels["status"]; s != "" {
		return s
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, status(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case MetricComputations:
		pm.computations.WithLabelValues(status(labels)).Add(value)
	case MetricTrials:
		pm.trials.Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, status(labels)).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, labels["season"]).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == MetricSwapsPerTrial {
		pm.swapsPerTrial.Observe(value)
		return
	}
	pm.values.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
