package llmwire

import (
	"context"
	"encoding/json"
)

const googleDefaultBase = "https://generativelanguage.googleapis.com/v1beta"

// googleAdapter drives the Google Generative Language API in text-only mode.
// Assistant turns map to the "model" role; tool turns are dropped and the
// normalized response never carries tool calls.
type googleAdapter struct {
	cfg      ProviderConfig
	settings adapterSettings
}

func newGoogleAdapter(cfg ProviderConfig, opts ...AdapterOption) *googleAdapter {
	return &googleAdapter{
		cfg:      cfg,
		settings: applyOptions(googleDefaultBase, opts),
	}
}

func (a *googleAdapter) ID() string { return ProviderGoogle }

func (a *googleAdapter) Complete(ctx context.Context, messages []Message, _ []ToolSpec) (*Completion, error) {
	contents := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleTool {
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": []map[string]any{{"text": m.Content}},
		})
	}

	body := map[string]any{"contents": contents}
	headers := map[string]string{"x-goog-api-key": a.cfg.Credential}
	url := a.settings.baseURL + "/models/" + a.cfg.Model + ":generateContent"

	raw, err := postJSON(ctx, a.settings.httpClient, ProviderGoogle, url, headers, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProviderHTTPError{Provider: ProviderGoogle, Message: "parse response: " + err.Error()}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, &ProviderHTTPError{Provider: ProviderGoogle, Message: "No response from LLM"}
	}

	return &Completion{Content: parsed.Candidates[0].Content.Parts[0].Text}, nil
}
