package schedule

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ahrav/go-rankings/internal/ports"
)

// retryFetcher retries transient failures with exponential backoff.
type retryFetcher struct {
	next       CoreFetcher
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware retries requests that fail with a retryable
// ports.FetchError, up to maxRetries additional attempts. Other errors are
// returned immediately.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreFetcher) CoreFetcher {
		return &retryFetcher{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

// Fetch executes the request with automatic retry logic.
func (r *retryFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var (
		lastErr  error
		attempts int
	)

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		attempts++
		body, err := r.next.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !ports.IsRetryable(err) || ctx.Err() != nil || attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.calculateDelay(attempt)):
		}
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", attempts, lastErr)
}

func (r *retryFetcher) calculateDelay(attempt int) time.Duration {
	// Exponential backoff with jitter.
	attempt = min(max(attempt, 0), 30)
	// #nosec G115 - attempt is bounded between 0 and 30
	delay := r.baseDelay * time.Duration(1<<uint(attempt))

	// Add jitter (±25%)
	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	return min(delay, r.maxDelay)
}
