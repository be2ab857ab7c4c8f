package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agentchat/agentchat/llmwire"
)

// Handler is one executable tool. Execute receives the raw argument JSON
// emitted by the model and returns a JSON result string. Handlers decode
// arguments into typed structs at this boundary and must not let internal
// failures escape; they report them through the returned payload instead.
type Handler interface {
	Name() string
	Spec() llmwire.ToolSpec
	Execute(ctx context.Context, args json.RawMessage) string
}

// UnknownToolError is returned by Registry.Execute for a name outside the
// catalog. It belongs to the per-call error path: callers convert it into an
// error tool turn and continue the run.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// Registry maps tool names to handlers and exposes the static tool catalog.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces a handler.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := h.Name()
	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
}

// Get returns the handler for name, or nil.
func (r *Registry) Get(name string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[name]
}

// Specs returns the tool catalog in registration order, for passing verbatim
// to tool-calling-capable providers.
func (r *Registry) Specs() []llmwire.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]llmwire.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.handlers[name].Spec())
	}
	return specs
}

// Execute routes one tool call to its handler and returns the handler's JSON
// result. Unknown names fail with UnknownToolError; handler-internal failures
// never surface here.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	h := r.Get(name)
	if h == nil {
		return "", &UnknownToolError{Name: name}
	}
	return h.Execute(ctx, args), nil
}

// SearchCredentials holds the externally supplied Google Custom Search
// credentials. Either field may be empty; the search handler then returns
// setup instructions instead of failing.
type SearchCredentials struct {
	APIKey   string
	EngineID string
}

// NewDefaultRegistry builds the fixed three-tool catalog: google_search,
// ai_pipe, and execute_javascript.
func NewDefaultRegistry(creds SearchCredentials) *Registry {
	r := NewRegistry()
	r.Register(NewSearchTool(creds))
	r.Register(NewPipelineTool())
	r.Register(NewExecuteJSTool())
	return r
}

// errorPayload builds the standard degraded-failure result: a JSON object
// with a top-level "error" key plus echoed input fields.
func errorPayload(message string, fields map[string]any) string {
	payload := map[string]any{"error": message}
	for k, v := range fields {
		payload[k] = v
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"internal tool error"}`
	}
	return string(out)
}

// mustJSON marshals a payload that is known to be marshalable.
func mustJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return errorPayload("encode result: "+err.Error(), nil)
	}
	return string(out)
}
