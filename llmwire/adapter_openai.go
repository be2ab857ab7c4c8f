package llmwire

import (
	"context"
	"encoding/json"
)

const openAIDefaultBase = "https://api.openai.com/v1"

// chatCompletionsAdapter speaks the OpenAI chat-completions dialect with
// native tool calling. It backs both the openai and aipipe providers; the
// relay differs only in endpoint and identifier.
type chatCompletionsAdapter struct {
	id       string
	cfg      ProviderConfig
	settings adapterSettings
}

func newOpenAIAdapter(cfg ProviderConfig, opts ...AdapterOption) *chatCompletionsAdapter {
	return &chatCompletionsAdapter{
		id:       ProviderOpenAI,
		cfg:      cfg,
		settings: applyOptions(openAIDefaultBase, opts),
	}
}

func (a *chatCompletionsAdapter) ID() string { return a.id }

func (a *chatCompletionsAdapter) Complete(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error) {
	body := map[string]any{
		"model":    a.cfg.Model,
		"messages": toChatCompletionsMessages(messages),
	}
	if len(tools) > 0 {
		body["tools"] = toChatCompletionsTools(tools)
		body["tool_choice"] = "auto"
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.cfg.Credential,
	}

	raw, err := postJSON(ctx, a.settings.httpClient, a.id, a.settings.baseURL+"/chat/completions", headers, body)
	if err != nil {
		return nil, err
	}
	return parseChatCompletionsResponse(a.id, raw)
}

// toChatCompletionsMessages converts the abstract transcript, tool turns
// included, to the chat-completions wire shape.
func toChatCompletionsMessages(messages []Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		wire := map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		}
		if m.Role == RoleAssistant && len(m.ToolCalls) > 0 {
			calls := make([]map[string]any, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				calls[i] = map[string]any{
					"id":   tc.ID,
					"type": "function",
					"function": map[string]any{
						"name":      tc.Name,
						"arguments": tc.Arguments,
					},
				}
			}
			wire["tool_calls"] = calls
		}
		if m.Role == RoleTool {
			wire["tool_call_id"] = m.ToolCallID
			wire["name"] = m.ToolName
		}
		out = append(out, wire)
	}
	return out
}

func toChatCompletionsTools(tools []ToolSpec) []map[string]any {
	out := make([]map[string]any, len(tools))
	for i, t := range tools {
		out[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		}
	}
	return out
}

// chatCompletionsBody is the subset of the response the adapter cares about.
type chatCompletionsBody struct {
	Choices []struct {
		Message struct {
			Content   any `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// parseChatCompletionsResponse normalizes a chat-completions body. Tool call
// id, name, and argument text pass through unmodified.
func parseChatCompletionsResponse(provider string, raw []byte) (*Completion, error) {
	var body chatCompletionsBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ProviderHTTPError{Provider: provider, Message: "parse response: " + err.Error()}
	}
	if len(body.Choices) == 0 {
		return nil, &ProviderHTTPError{Provider: provider, Message: "No response from LLM"}
	}

	msg := body.Choices[0].Message

	content := ""
	if s, ok := msg.Content.(string); ok {
		content = s
	}

	var calls []ToolCall
	for _, tc := range msg.ToolCalls {
		calls = append(calls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &Completion{Content: content, ToolCalls: calls}, nil
}
