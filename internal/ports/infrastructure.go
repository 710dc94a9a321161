// Package ports defines the interfaces between the ranking application and
// its infrastructure: where outcomes come from and where operational
// signals go.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-rankings/internal/domain"
)

// OutcomeSource supplies the Outcome Table for a season. Implementations
// decide whether the data is fetched remotely or read from a local cache;
// the estimator does not care which.
type OutcomeSource interface {
	// Outcomes returns the season's outcomes in table order.
	Outcomes(ctx context.Context, year int) (domain.OutcomeTable, error)
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (NoopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string)         {}
func (NoopMetrics) RecordHistogram(string, float64, map[string]string)     {}

var _ MetricsCollector = NoopMetrics{}
