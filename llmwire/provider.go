package llmwire

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Provider identifiers. These form the fixed enumerated set accepted by
// NewAdapter; anything else fails with UnsupportedProviderError.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderAIPipe    = "aipipe"
)

// ProviderAdapter translates an abstract conversation plus tool catalog into
// one provider-specific request and normalizes the response back into a
// Completion. Implementations perform exactly one outbound HTTP request per
// Complete invocation and never retry.
type ProviderAdapter interface {
	// ID returns the provider identifier.
	ID() string

	// Complete sends the conversation to the provider and returns the
	// normalized assistant turn.
	Complete(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error)
}

// AdapterOption configures an adapter at construction time.
type AdapterOption func(*adapterSettings)

type adapterSettings struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL overrides the provider's default endpoint base. Used for
// relays, proxies, and tests.
func WithBaseURL(url string) AdapterOption {
	return func(s *adapterSettings) { s.baseURL = url }
}

// WithHTTPClient overrides the HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) AdapterOption {
	return func(s *adapterSettings) { s.httpClient = c }
}

func applyOptions(defaultBase string, opts []AdapterOption) adapterSettings {
	s := adapterSettings{
		baseURL:    defaultBase,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewAdapter constructs the adapter for cfg.Provider. The adapter is bound to
// the (provider, model, credential) triple; callers reconstruct it whenever
// the configuration changes.
func NewAdapter(cfg ProviderConfig, opts ...AdapterOption) (ProviderAdapter, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAIAdapter(cfg, opts...), nil
	case ProviderAnthropic:
		return newAnthropicAdapter(cfg, opts...), nil
	case ProviderGoogle:
		return newGoogleAdapter(cfg, opts...), nil
	case ProviderAIPipe:
		return newAIPipeAdapter(cfg, opts...), nil
	default:
		return nil, &UnsupportedProviderError{Provider: cfg.Provider}
	}
}

// postJSON issues one POST with a JSON body and returns the raw response
// bytes. Non-2xx statuses map to ProviderHTTPError, transport failures to
// NetworkError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &ProviderHTTPError{Provider: provider, Message: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &ProviderHTTPError{Provider: provider, Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{Provider: provider, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: provider, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderHTTPError{
			Provider:   provider,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Message:    "LLM API error",
		}
	}
	return raw, nil
}
