package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur during a ranking computation.
var (
	// ErrInput indicates that the caller supplied outcomes or options that
	// violate a ranking invariant. Every *InputError unwraps to it.
	ErrInput = errors.New("invalid input")

	// ErrEmptyOutcomeTable indicates that there are no outcomes and
	// therefore no entities to rank.
	ErrEmptyOutcomeTable = errors.New("outcome table is empty")

	// ErrUnknownEntity indicates that an outcome references an entity that
	// is not part of the rank assignment.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrBrokenBijection indicates that a rank assignment is not a
	// permutation of [1, N].
	ErrBrokenBijection = errors.New("rank assignment is not a permutation")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// InputError describes which ranking invariant a caller violated.
// It always matches ErrInput via errors.Is, and additionally matches the
// more specific sentinel stored in Err when one is set.
type InputError struct {
	// Subject names the offending value: an entity, an option name, or an
	// outcome index.
	Subject string

	// Reason is a human readable description of the violation.
	Reason string

	// Suggestion optionally carries a closest known alternative, for
	// example a correctly spelled entity name.
	Suggestion string

	// Err is an optional, more specific sentinel.
	Err error
}

// Error implements the error interface for InputError.
func (e *InputError) Error() string {
	var b strings.Builder
	b.WriteString("input error")
	if e.Subject != "" {
		fmt.Fprintf(&b, ": %s", e.Subject)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	return b.String()
}

// Is reports whether target is ErrInput or the specific sentinel.
func (e *InputError) Is(target error) bool {
	return target == ErrInput || (e.Err != nil && errors.Is(e.Err, target))
}

// Unwrap returns the specific sentinel, if any.
func (e *InputError) Unwrap() error { return e.Err }

// NewInputError creates a new InputError.
func NewInputError(subject, reason string, err error) *InputError {
	return &InputError{
		Subject: subject,
		Reason:  reason,
		Err:     err,
	}
}

// ConfigError represents a configuration problem detected before any
// trial runs.
type ConfigError struct {
	// Key is the configuration key that was rejected.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.Key, e.Err)
}

// Is reports whether target is ErrInvalidConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		Key: key,
		Err: err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
