package application

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-rankings/infrastructure/schedule"
	"github.com/ahrav/go-rankings/internal/ports"
)

// NewScheduleSource assembles the schedule source described by cfg. The
// fetcher chain wraps the HTTP client so that metrics count logical
// fetches while the rate limiter paces every individual attempt.
func NewScheduleSource(cfg SourceConfig, metrics ports.MetricsCollector, logger *zap.Logger) *schedule.Source {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}

	var fetcher schedule.CoreFetcher
	if !cfg.Local {
		client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
		mw := []schedule.Middleware{
			schedule.TracingMiddleware("schedule-source"),
			schedule.MetricsMiddleware(metrics),
		}
		if cfg.CircuitBreaker.MaxFailures > 0 {
			cb := schedule.NewCircuitBreaker(
				cfg.CircuitBreaker.MaxFailures,
				time.Duration(cfg.CircuitBreaker.CooldownSeconds)*time.Second,
			)
			mw = append(mw, schedule.CircuitBreakerMiddleware(cb, metrics))
		}
		mw = append(mw,
			schedule.RetryMiddleware(
				cfg.Retry.MaxRetries,
				time.Duration(cfg.Retry.InitialWait)*time.Millisecond,
				time.Duration(cfg.Retry.MaxWait)*time.Millisecond,
			),
			schedule.RateLimitMiddleware(rate.Limit(cfg.RateLimit), cfg.Burst),
		)
		fetcher = schedule.Chain(schedule.NewHTTPFetcher(client, cfg.UserAgent), mw...)
	}

	return schedule.NewSource(
		schedule.SourceConfig{
			Local:       cfg.Local,
			URLTemplate: cfg.URLTemplate,
			TableID:     cfg.TableID,
		},
		fetcher,
		schedule.NewFileCache(cfg.DataDir),
		logger,
	)
}
