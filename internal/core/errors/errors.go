// Package errors provides centralized error definitions for the application.
//
// Naming conventions:
//   - Exported errors (Err*): for errors callers check with errors.Is
//   - All sentinel errors are variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Configuration errors. These indicate a caller or integration bug and are
// raised at call time rather than retried.
var (
	// ErrUnknownPlatform indicates a platform name outside the configured set.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidRules indicates a malformed validation rule set.
	ErrInvalidRules = errors.New("invalid validation rules")
)

// Provider errors. The generation state machine recovers from these locally
// up to its attempt budget.
var (
	// ErrProviderUnavailable indicates the inference endpoint is unreachable.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrModelNotFound indicates the requested model id is not present on the server.
	ErrModelNotFound = errors.New("model not found")

	// ErrAuthentication indicates the provider rejected the credential.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response")
)

// Generation errors.
var (
	// ErrNoCandidate indicates every attempt failed before producing text;
	// the caller must fall back to a non-LLM template.
	ErrNoCandidate = errors.New("no usable candidate")
)

// Storage errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
