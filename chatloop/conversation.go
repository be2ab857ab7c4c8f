package chatloop

import (
	"sync"
	"time"

	"github.com/agentchat/agentchat/llmwire"
)

// Turn is a single entry in the conversation transcript. Tool turns always
// carry the ToolCallID of a call emitted by the immediately preceding
// assistant turn, and their Content is always valid JSON text.
type Turn struct {
	Role       llmwire.Role       `json:"role"`
	Content    string             `json:"content"`
	ToolCalls  []llmwire.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string             `json:"tool_call_id,omitempty"`
	ToolName   string             `json:"tool_name,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Conversation is the ordered, append-only transcript of turns. It is
// mutated only by the owning Session during a reasoning run and read by the
// presentation layer; it is never pruned or persisted across sessions.
type Conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// NewConversation creates an empty Conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendUser appends a user turn.
func (c *Conversation) AppendUser(content string) {
	c.append(Turn{Role: llmwire.RoleUser, Content: content})
}

// AppendAssistant appends an assistant turn with its tool calls, if any.
func (c *Conversation) AppendAssistant(content string, calls []llmwire.ToolCall) {
	c.append(Turn{Role: llmwire.RoleAssistant, Content: content, ToolCalls: calls})
}

// AppendToolResult appends one tool turn answering the given call.
func (c *Conversation) AppendToolResult(callID, toolName, resultJSON string) {
	c.append(Turn{
		Role:       llmwire.RoleTool,
		Content:    resultJSON,
		ToolCallID: callID,
		ToolName:   toolName,
	})
}

func (c *Conversation) append(t Turn) {
	t.Timestamp = time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, t)
}

// History returns a copy of the transcript.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Messages converts the transcript into the abstract wire format consumed by
// provider adapters.
func (c *Conversation) Messages() []llmwire.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llmwire.Message, len(c.turns))
	for i, t := range c.turns {
		out[i] = llmwire.Message{
			Role:       t.Role,
			Content:    t.Content,
			ToolCalls:  t.ToolCalls,
			ToolCallID: t.ToolCallID,
			ToolName:   t.ToolName,
		}
	}
	return out
}
