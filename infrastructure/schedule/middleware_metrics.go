package schedule

import (
	"context"
	"time"

	"github.com/ahrav/go-rankings/internal/ports"
)

type meteredFetcher struct {
	next    CoreFetcher
	metrics ports.MetricsCollector
}

// MetricsMiddleware records fetch latency and outcome counts.
func MetricsMiddleware(metrics ports.MetricsCollector) Middleware {
	return func(next CoreFetcher) CoreFetcher {
		return &meteredFetcher{next: next, metrics: metrics}
	}
}

// Fetch forwards the request and records its latency and status.
func (m *meteredFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	body, err := m.next.Fetch(ctx, url)

	status := "success"
	if err != nil {
		status = "error"
	}
	labels := map[string]string{"operation": "fetch", "status": status}
	m.metrics.RecordLatency("schedule_fetch", time.Since(start), labels)
	m.metrics.RecordCounter("schedule_fetch_total", 1, labels)
	return body, err
}
