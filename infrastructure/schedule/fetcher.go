// Package schedule acquires a season's game results: it fetches the
// schedule page, parses its results table, cleans team names, and keeps a
// CSV copy on disk so later runs can work offline.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ahrav/go-rankings/internal/ports"
)

const (
	// DefaultURLTemplate is formatted with the season year.
	DefaultURLTemplate = "https://www.sports-reference.com/cfb/years/%d-schedule.html"

	// DefaultUserAgent identifies the fetcher to the remote site.
	DefaultUserAgent = "go-rankings/1.0 (+https://github.com/ahrav/go-rankings)"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 32 << 20
)

// CoreFetcher retrieves a single document. Middleware wraps a CoreFetcher
// to add retries, pacing, tracing and metrics.
type CoreFetcher interface {
	// Fetch returns the body of the document at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Middleware decorates a CoreFetcher with a cross-cutting concern.
type Middleware func(CoreFetcher) CoreFetcher

// Chain applies middleware so that the first one listed is the outermost.
func Chain(core CoreFetcher, middleware ...Middleware) CoreFetcher {
	for i := len(middleware) - 1; i >= 0; i-- {
		core = middleware[i](core)
	}
	return core
}

// HTTPFetcher is the CoreFetcher that talks to the network.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets a 30 second
// timeout; an empty userAgent falls back to DefaultUserAgent.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch performs a GET request and classifies failures into the ports
// sentinel errors so the retry middleware can tell transient from fatal.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ports.NewFetchError(url, 0, ports.ErrTimeout)
		}
		return nil, ports.NewFetchError(url, 0, fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err))
	}
	defer resp.Body.Close()

	if statusErr := ports.StatusError(resp.StatusCode); statusErr != nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, ports.NewFetchError(url, resp.StatusCode, statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, ports.NewFetchError(url, resp.StatusCode, fmt.Errorf("%w: read body: %v", ports.ErrInvalidResponse, err))
	}
	return body, nil
}
