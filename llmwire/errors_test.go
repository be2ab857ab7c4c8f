package llmwire

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderHTTPErrorRetryable(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{599, true},
		{0, false},
	}

	for _, tc := range cases {
		err := &ProviderHTTPError{Provider: ProviderOpenAI, Status: tc.status}
		if err.Retryable() != tc.retryable {
			t.Errorf("status %d: expected retryable=%v", tc.status, tc.retryable)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil must not be retryable")
	}
	if !IsRetryable(&ProviderHTTPError{Status: 503}) {
		t.Error("503 must be retryable")
	}
	if IsRetryable(&ProviderHTTPError{Status: 401}) {
		t.Error("401 must not be retryable")
	}
	if !IsRetryable(&NetworkError{Provider: ProviderGoogle, Cause: errors.New("refused")}) {
		t.Error("network errors must be retryable")
	}
	if IsRetryable(&ConfigurationError{Message: "no key"}) {
		t.Error("configuration errors must not be retryable")
	}
	if IsRetryable(errors.New("mystery")) {
		t.Error("unknown errors must default to non-retryable")
	}

	// Classification must survive wrapping.
	wrapped := fmt.Errorf("call failed: %w", &ProviderHTTPError{Status: 429})
	if !IsRetryable(wrapped) {
		t.Error("wrapped 429 must be retryable")
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &NetworkError{Provider: ProviderOpenAI, Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("NetworkError must unwrap to its cause")
	}
}
