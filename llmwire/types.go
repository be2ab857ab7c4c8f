package llmwire

import "strings"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-initiated tool invocation extracted from a provider
// response. Arguments is raw JSON text; it is decoded only at the tool
// handler boundary.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the abstract conversation sent to a provider.
// Tool messages carry the ToolCallID of the call they answer and always hold
// valid JSON text in Content.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message with optional tool calls.
func AssistantMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResultMessage creates a tool Message answering the given call.
func ToolResultMessage(callID, toolName, resultJSON string) Message {
	return Message{
		Role:       RoleTool,
		Content:    resultJSON,
		ToolCallID: callID,
		ToolName:   toolName,
	}
}

// ToolSpec is the static, serializable description of one tool offered to
// tool-calling-capable providers. Parameters holds a JSON Schema object.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ProviderConfig selects a provider endpoint, model, and credential. The
// adapter is reconstructed whenever any field changes.
type ProviderConfig struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Credential string `json:"-"`
}

// Completion is the normalized result of one provider round trip.
type Completion struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// HasToolCalls reports whether the model requested any tool invocations.
func (c *Completion) HasToolCalls() bool {
	return len(c.ToolCalls) > 0
}

// TextContent returns the completion text with surrounding whitespace removed.
func (c *Completion) TextContent() string {
	return strings.TrimSpace(c.Content)
}
