package llmwire

import (
	"errors"
	"fmt"
)

// UnsupportedProviderError is returned by NewAdapter for a provider id outside
// the fixed enumerated set.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s", e.Provider)
}

// ConfigurationError signals an invalid or incomplete provider configuration,
// detected before any network call is made.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ProviderHTTPError is returned when a provider responds with a non-2xx
// status or a body the adapter cannot interpret.
type ProviderHTTPError struct {
	Provider   string
	Status     int
	StatusText string
	Message    string
}

func (e *ProviderHTTPError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("[%s] %s (status=%d %s)", e.Provider, e.Message, e.Status, e.StatusText)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

// Retryable reports whether the failure is transient. Rate limits, request
// timeouts, and server-side errors are safe to retry; client errors and
// malformed bodies are not.
func (e *ProviderHTTPError) Retryable() bool {
	switch e.Status {
	case 408, 429:
		return true
	}
	return e.Status >= 500 && e.Status < 600
}

// NetworkError wraps a transport-level failure reaching the provider.
type NetworkError struct {
	Provider string
	Cause    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("[%s] network error: %v", e.Provider, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// IsRetryable returns true if the error is safe to retry. Configuration and
// unsupported-provider errors never are; unknown errors default to
// non-retryable so callers fail fast.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *ProviderHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
