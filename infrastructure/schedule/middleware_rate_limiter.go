package schedule

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedFetcher paces requests with a token bucket.
type rateLimitedFetcher struct {
	next    CoreFetcher
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting using a token bucket algorithm.
// The limit parameter sets requests per second, while burst allows
// temporary spikes above the sustained rate.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next CoreFetcher) CoreFetcher {
		return &rateLimitedFetcher{
			next:    next,
			limiter: limiter,
		}
	}
}

// Fetch waits for a token before forwarding the request.
func (r *rateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Fetch(ctx, url)
}
