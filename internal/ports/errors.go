package ports

import (
	"errors"
	"fmt"
	"net/http"
)

// Common infrastructure errors that can occur while acquiring outcome data.
var (
	// ErrRateLimited indicates that the remote site rate limited the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the remote site is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidResponse indicates that the remote site returned a response
	// that could not be used.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrNotFound indicates that the requested page does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss indicates that no cached schedule exists yet.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted indicates that cached data is corrupted or invalid.
	ErrCacheCorrupted = errors.New("cache corrupted")
)

// FetchError represents a failed retrieval of a remote document.
type FetchError struct {
	// URL is the address that was requested.
	URL string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for FetchError.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch error: url=%s, status=%d, err=%v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error: url=%s, err=%v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the request can
// be repeated.
func (e *FetchError) IsRetryable() bool {
	// Only network/service-level errors are retryable; a bad page is not.
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewFetchError creates a new FetchError with the given details.
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// StatusError maps an HTTP status code onto the sentinel errors above.
// It returns nil for 2xx codes.
func StatusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ErrTimeout
	case code >= 500:
		return ErrServiceUnavailable
	default:
		return ErrInvalidResponse
	}
}

// IsRetryable reports whether err wraps a retryable FetchError.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.IsRetryable()
}

// CacheError represents an error from cache operations.
// It includes the key and operation that failed.
type CacheError struct {
	// Key is the cache key that was involved in the failed operation.
	Key string

	// Operation is the name of the cache operation that failed.
	Operation string

	// Err is the underlying error that caused the cache operation to fail.
	Err error
}

// Error implements the error interface for CacheError.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error { return e.Err }

// NewCacheError creates a new CacheError with the given details.
func NewCacheError(key, operation string, err error) *CacheError {
	return &CacheError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}
