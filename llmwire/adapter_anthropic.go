package llmwire

import (
	"context"
	"encoding/json"
)

const (
	anthropicDefaultBase = "https://api.anthropic.com/v1"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 1024
)

// anthropicAdapter drives the Anthropic Messages API in text-only mode: tool
// turns are filtered out of the outbound payload and the normalized response
// never carries tool calls.
type anthropicAdapter struct {
	cfg      ProviderConfig
	settings adapterSettings
}

func newAnthropicAdapter(cfg ProviderConfig, opts ...AdapterOption) *anthropicAdapter {
	return &anthropicAdapter{
		cfg:      cfg,
		settings: applyOptions(anthropicDefaultBase, opts),
	}
}

func (a *anthropicAdapter) ID() string { return ProviderAnthropic }

func (a *anthropicAdapter) Complete(ctx context.Context, messages []Message, _ []ToolSpec) (*Completion, error) {
	body := map[string]any{
		"model":      a.cfg.Model,
		"max_tokens": anthropicMaxTokens,
		"messages":   toTextOnlyMessages(messages, "assistant"),
	}

	headers := map[string]string{
		"x-api-key":         a.cfg.Credential,
		"anthropic-version": anthropicVersion,
	}

	raw, err := postJSON(ctx, a.settings.httpClient, ProviderAnthropic, a.settings.baseURL+"/messages", headers, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProviderHTTPError{Provider: ProviderAnthropic, Message: "parse response: " + err.Error()}
	}
	if len(parsed.Content) == 0 {
		return nil, &ProviderHTTPError{Provider: ProviderAnthropic, Message: "No response from LLM"}
	}

	return &Completion{Content: parsed.Content[0].Text}, nil
}

// toTextOnlyMessages strips tool turns and collapses every remaining role to
// either the provider's assistant-role name or "user". Dropping prior tool
// turns loses fidelity on long runs; acceptable for this minimal integration.
func toTextOnlyMessages(messages []Message, assistantRole string) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleTool {
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = assistantRole
		}
		out = append(out, map[string]any{
			"role":    role,
			"content": m.Content,
		})
	}
	return out
}
