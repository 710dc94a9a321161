package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahrav/go-rankings/internal/ports"
)

// ErrCircuitOpen indicates that the circuit breaker rejected a fetch
// without contacting the upstream site.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

// Circuit breaker states.
const (
	// StateClosed lets every fetch through.
	StateClosed CircuitState = iota
	// StateOpen rejects fetches until the cooldown has elapsed.
	StateOpen
	// StateHalfOpen lets a single probe through to test recovery.
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker opens after maxFailures consecutive transient failures
// and stays open for the cooldown before probing again. Only retryable
// fetch errors count as failures; a missing page says nothing about the
// health of the site.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       CircuitState
	failures    int
	maxFailures int
	cooldown    time.Duration
	openedAt    time.Time
	probing     bool
	now         func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: max(maxFailures, 1),
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow reports whether a fetch may proceed, moving an expired open
// circuit to half-open.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = StateHalfOpen
		cb.probing = true
		return true
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	// An abandoned request says nothing about upstream health.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	if err == nil || !ports.IsRetryable(err) {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = cb.now()
	}
}

type circuitBreakerFetcher struct {
	next    CoreFetcher
	cb      *CircuitBreaker
	metrics ports.MetricsCollector
}

// CircuitBreakerMiddleware fails fast with ErrCircuitOpen while cb is
// open. The circuit state is published as the schedule_circuit_state gauge
// (0 closed, 1 open, 2 half-open) when metrics is non-nil.
func CircuitBreakerMiddleware(cb *CircuitBreaker, metrics ports.MetricsCollector) Middleware {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return func(next CoreFetcher) CoreFetcher {
		return &circuitBreakerFetcher{next: next, cb: cb, metrics: metrics}
	}
}

// Fetch executes the request through the circuit breaker.
func (c *circuitBreakerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !c.cb.allow() {
		c.metrics.RecordCounter("schedule_circuit_rejections_total", 1, map[string]string{"status": "rejected"})
		return nil, ErrCircuitOpen
	}

	body, err := c.next.Fetch(ctx, url)
	c.cb.record(err)
	c.metrics.RecordGauge("schedule_circuit_state", float64(c.cb.State()), nil)
	return body, err
}
