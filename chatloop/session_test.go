package chatloop

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/agentchat/agentchat/llmwire"
	"github.com/agentchat/agentchat/tools"
)

// scriptAdapter replays a fixed sequence of completions, repeating the last
// entry once the script runs out. It records every request for inspection.
type scriptAdapter struct {
	script   []*llmwire.Completion
	err      error
	requests [][]llmwire.Message
	specs    [][]llmwire.ToolSpec
}

func (a *scriptAdapter) ID() string { return "script" }

func (a *scriptAdapter) Complete(_ context.Context, messages []llmwire.Message, specs []llmwire.ToolSpec) (*llmwire.Completion, error) {
	a.requests = append(a.requests, messages)
	a.specs = append(a.specs, specs)
	if a.err != nil {
		return nil, a.err
	}
	i := len(a.requests) - 1
	if i >= len(a.script) {
		i = len(a.script) - 1
	}
	return a.script[i], nil
}

func newTestSession(t *testing.T, adapter llmwire.ProviderAdapter) *Session {
	t.Helper()
	cfg := DefaultSessionConfig()
	cfg.Retry = RetryPolicy{MaxRetries: 0}
	session := NewSession(tools.NewDefaultRegistry(tools.SearchCredentials{}), &cfg)
	session.mu.Lock()
	session.adapter = adapter
	session.providerCfg = llmwire.ProviderConfig{Provider: "script", Model: "test", Credential: "key"}
	session.mu.Unlock()
	return session
}

func TestSendMessageWithoutConfiguration(t *testing.T) {
	session := NewSession(tools.NewDefaultRegistry(tools.SearchCredentials{}), nil)

	err := session.SendMessage(context.Background(), "hello")

	var cfgErr *llmwire.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Message != "Please configure your API key in the settings" {
		t.Errorf("unexpected message %q", cfgErr.Message)
	}
	if session.conv.Len() != 0 {
		t.Error("transcript must stay untouched on configuration errors")
	}
	if session.Err() != cfgErr.Message {
		t.Errorf("rejection must surface through Err, got %q", session.Err())
	}
}

func TestSendMessagePlainAnswer(t *testing.T) {
	adapter := &scriptAdapter{script: []*llmwire.Completion{{Content: "Four."}}}
	session := newTestSession(t, adapter)

	if err := session.SendMessage(context.Background(), "What is 2+2?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(history))
	}
	if history[0].Role != llmwire.RoleUser || history[0].Content != "What is 2+2?" {
		t.Errorf("unexpected user turn: %+v", history[0])
	}
	if history[1].Role != llmwire.RoleAssistant || history[1].Content != "Four." {
		t.Errorf("unexpected assistant turn: %+v", history[1])
	}

	state := session.LastRun()
	if !state.Terminated || state.Reason != TerminationDone {
		t.Errorf("unexpected run state: %+v", state)
	}
	if session.Err() != "" {
		t.Errorf("expected clean error state, got %q", session.Err())
	}
}

func TestSystemPromptPrependedNotPersisted(t *testing.T) {
	adapter := &scriptAdapter{script: []*llmwire.Completion{{Content: "ok"}}}
	session := newTestSession(t, adapter)

	if err := session.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(adapter.requests) != 1 {
		t.Fatalf("expected one provider call, got %d", len(adapter.requests))
	}
	sent := adapter.requests[0]
	if sent[0].Role != llmwire.RoleSystem || sent[0].Content == "" {
		t.Errorf("first wire message must be the system prompt, got %+v", sent[0])
	}
	for _, turn := range session.History() {
		if turn.Role == llmwire.RoleSystem {
			t.Error("system prompt must not appear in the transcript")
		}
	}
	if len(adapter.specs[0]) != 3 {
		t.Errorf("expected full tool catalog on the wire, got %d specs", len(adapter.specs[0]))
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	args, _ := json.Marshal(map[string]string{"code": "return 2+2"})
	adapter := &scriptAdapter{script: []*llmwire.Completion{
		{
			Content: "Let me compute that.",
			ToolCalls: []llmwire.ToolCall{
				{ID: "call_1", Name: "execute_javascript", Arguments: string(args)},
			},
		},
		{Content: "The answer is 4."},
	}}
	session := newTestSession(t, adapter)

	if err := session.SendMessage(context.Background(), "What is 2+2? Use code."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := session.History()
	if len(history) != 4 {
		t.Fatalf("expected user, assistant, tool, assistant turns, got %d", len(history))
	}

	toolTurn := history[2]
	if toolTurn.Role != llmwire.RoleTool || toolTurn.ToolCallID != "call_1" || toolTurn.ToolName != "execute_javascript" {
		t.Errorf("unexpected tool turn: %+v", toolTurn)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(toolTurn.Content), &result); err != nil {
		t.Fatalf("tool turn content must be valid JSON: %v", err)
	}
	if result["success"] != true || result["result"] != float64(4) {
		t.Errorf("unexpected sandbox result: %v", result)
	}

	if history[3].Content != "The answer is 4." {
		t.Errorf("unexpected final answer: %q", history[3].Content)
	}

	// Second provider call must include the tool turn.
	second := adapter.requests[1]
	last := second[len(second)-1]
	if last.Role != llmwire.RoleTool || last.ToolCallID != "call_1" {
		t.Errorf("tool turn missing from follow-up request: %+v", last)
	}

	state := session.LastRun()
	if state.Iteration != 1 || state.Reason != TerminationDone {
		t.Errorf("unexpected run state: %+v", state)
	}
}

func TestMultipleToolCallsExecuteInOrder(t *testing.T) {
	adapter := &scriptAdapter{script: []*llmwire.Completion{
		{
			Content: "Running three tools.",
			ToolCalls: []llmwire.ToolCall{
				{ID: "c1", Name: "first", Arguments: "{}"},
				{ID: "c2", Name: "second", Arguments: "{}"},
				{ID: "c3", Name: "third", Arguments: "{}"},
			},
		},
		{Content: "all done"},
	}}

	var executions []string
	cfg := DefaultSessionConfig()
	cfg.Retry = RetryPolicy{MaxRetries: 0}
	registry := tools.NewRegistry()
	for _, name := range []string{"first", "second", "third"} {
		registry.Register(&recordingHandler{name: name, log: &executions})
	}
	session := NewSession(registry, &cfg)
	session.mu.Lock()
	session.adapter = adapter
	session.providerCfg = llmwire.ProviderConfig{Provider: "script", Model: "test", Credential: "key"}
	session.mu.Unlock()

	if err := session.SendMessage(context.Background(), "run them all"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"first", "second", "third"}
	if len(executions) != len(wantOrder) {
		t.Fatalf("expected %d executions, got %d: %v", len(wantOrder), len(executions), executions)
	}
	for i, want := range wantOrder {
		if executions[i] != want {
			t.Errorf("execution %d: expected %q, got %q", i, want, executions[i])
		}
	}

	// One tool turn per call, directly after the assistant turn, in call order.
	history := session.History()
	if len(history) != 6 {
		t.Fatalf("expected user, assistant, 3 tool turns, assistant, got %d", len(history))
	}
	wantCalls := []struct{ id, name string }{
		{"c1", "first"}, {"c2", "second"}, {"c3", "third"},
	}
	for i, want := range wantCalls {
		turn := history[2+i]
		if turn.Role != llmwire.RoleTool {
			t.Errorf("turn %d: expected tool role, got %s", 2+i, turn.Role)
		}
		if turn.ToolCallID != want.id || turn.ToolName != want.name {
			t.Errorf("turn %d: expected call %s/%s, got %s/%s", 2+i, want.id, want.name, turn.ToolCallID, turn.ToolName)
		}
	}
	if history[5].Content != "all done" {
		t.Errorf("unexpected final answer: %q", history[5].Content)
	}

	// The follow-up request must carry every tool turn, still in order.
	second := adapter.requests[1]
	tail := second[len(second)-3:]
	for i, want := range wantCalls {
		if tail[i].Role != llmwire.RoleTool || tail[i].ToolCallID != want.id {
			t.Errorf("wire message %d: expected tool turn %s, got %+v", i, want.id, tail[i])
		}
	}
}

func TestUnknownToolBecomesErrorTurn(t *testing.T) {
	adapter := &scriptAdapter{script: []*llmwire.Completion{
		{ToolCalls: []llmwire.ToolCall{{ID: "c1", Name: "teleport", Arguments: "{}"}}},
		{Content: "done"},
	}}
	session := newTestSession(t, adapter)

	if err := session.SendMessage(context.Background(), "go"); err != nil {
		t.Fatalf("run must continue past unknown tools: %v", err)
	}

	history := session.History()
	toolTurn := history[2]
	var payload map[string]string
	if err := json.Unmarshal([]byte(toolTurn.Content), &payload); err != nil {
		t.Fatalf("error turn must be valid JSON: %v", err)
	}
	if payload["error"] != "Unknown tool: teleport" {
		t.Errorf("unexpected error payload: %v", payload)
	}
}

func TestLoopBoundExhaustion(t *testing.T) {
	// The model asks for a tool on every turn and never concludes.
	adapter := &scriptAdapter{script: []*llmwire.Completion{
		{ToolCalls: []llmwire.ToolCall{{ID: "c", Name: "ai_pipe", Arguments: `{"workflow":"w","input":"i"}`}}},
	}}

	cfg := DefaultSessionConfig()
	cfg.Retry = RetryPolicy{MaxRetries: 0}
	registry := tools.NewRegistry()
	registry.Register(&instantHandler{name: "ai_pipe"})
	session := NewSession(registry, &cfg)
	session.mu.Lock()
	session.adapter = adapter
	session.providerCfg = llmwire.ProviderConfig{Provider: "script", Model: "test", Credential: "key"}
	session.mu.Unlock()

	err := session.SendMessage(context.Background(), "loop forever")
	if !errors.Is(err, ErrLoopExhausted) {
		t.Fatalf("expected ErrLoopExhausted, got %v", err)
	}

	if len(adapter.requests) != 10 {
		t.Errorf("expected exactly 10 provider calls, got %d", len(adapter.requests))
	}

	history := session.History()
	assistants, toolTurns := 0, 0
	for _, turn := range history {
		switch turn.Role {
		case llmwire.RoleAssistant:
			assistants++
		case llmwire.RoleTool:
			toolTurns++
		}
	}
	if assistants != 10 || toolTurns != 10 {
		t.Errorf("expected 10 assistant and 10 tool turns, got %d/%d", assistants, toolTurns)
	}

	state := session.LastRun()
	if state.Iteration != 10 || state.Reason != TerminationMaxLoops {
		t.Errorf("unexpected run state: %+v", state)
	}
	if session.Err() == "" {
		t.Error("exhaustion must surface through Err")
	}
}

func TestProviderErrorAbortsPreservingTranscript(t *testing.T) {
	adapter := &scriptAdapter{err: &llmwire.ProviderHTTPError{Provider: "script", Status: 401, Message: "LLM API error"}}
	session := newTestSession(t, adapter)

	err := session.SendMessage(context.Background(), "hello")

	var httpErr *llmwire.ProviderHTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected ProviderHTTPError, got %v", err)
	}
	if len(adapter.requests) != 1 {
		t.Errorf("401 must not be retried, got %d calls", len(adapter.requests))
	}

	history := session.History()
	if len(history) != 1 || history[0].Role != llmwire.RoleUser {
		t.Errorf("user turn must survive the abort: %+v", history)
	}
	if session.Err() == "" {
		t.Error("abort must surface through Err")
	}
	if session.LastRun().Reason != TerminationError {
		t.Errorf("unexpected reason %q", session.LastRun().Reason)
	}
}

func TestConcurrentSendRejected(t *testing.T) {
	release := make(chan struct{})
	adapter := &blockingAdapter{release: release}
	session := newTestSession(t, adapter)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- session.SendMessage(context.Background(), "first")
	}()

	// Wait until the first run is visibly in flight.
	deadline := time.After(2 * time.Second)
	for !session.Loading() {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := session.SendMessage(context.Background(), "second"); !errors.Is(err, ErrRunInFlight) {
		t.Fatalf("expected ErrRunInFlight, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// The rejected message must not have entered the transcript.
	for _, turn := range session.History() {
		if turn.Content == "second" {
			t.Error("rejected message leaked into the transcript")
		}
	}
}

func TestSessionEvents(t *testing.T) {
	adapter := &scriptAdapter{script: []*llmwire.Completion{
		{ToolCalls: []llmwire.ToolCall{{ID: "c1", Name: "ai_pipe", Arguments: `{"workflow":"w","input":"i"}`}}},
		{Content: "done"},
	}}

	cfg := DefaultSessionConfig()
	cfg.Retry = RetryPolicy{MaxRetries: 0}
	registry := tools.NewRegistry()
	registry.Register(&instantHandler{name: "ai_pipe"})
	session := NewSession(registry, &cfg)
	session.mu.Lock()
	session.adapter = adapter
	session.providerCfg = llmwire.ProviderConfig{Provider: "script", Model: "test", Credential: "key"}
	session.mu.Unlock()

	if err := session.SendMessage(context.Background(), "go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.Close()

	var kinds []EventKind
	for event := range session.Events() {
		kinds = append(kinds, event.Kind)
		if event.SessionID != session.ID() {
			t.Errorf("event carries wrong session id %q", event.SessionID)
		}
	}

	want := []EventKind{
		EventRunStart, EventUserTurn,
		EventAssistantTurn, EventToolCallStart, EventToolCallEnd,
		EventAssistantTurn, EventRunEnd,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestConfigureRejectsUnknownProvider(t *testing.T) {
	session := NewSession(tools.NewDefaultRegistry(tools.SearchCredentials{}), nil)

	err := session.Configure(llmwire.ProviderConfig{Provider: "mystery", Model: "m", Credential: "k"})
	var unsupported *llmwire.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %v", err)
	}
}

func TestConfigureSwitchKeepsTranscript(t *testing.T) {
	adapter := &scriptAdapter{script: []*llmwire.Completion{{Content: "first answer"}}}
	session := newTestSession(t, adapter)

	if err := session.SendMessage(context.Background(), "one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := session.Configure(llmwire.ProviderConfig{
		Provider:   llmwire.ProviderAnthropic,
		Model:      "claude-3-haiku-20240307",
		Credential: "new-key",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.conv.Len() != 2 {
		t.Errorf("switching providers must keep the transcript, got %d turns", session.conv.Len())
	}
	if session.ProviderConfig().Provider != llmwire.ProviderAnthropic {
		t.Errorf("provider config not updated: %+v", session.ProviderConfig())
	}
}

// recordingHandler appends its name to a shared log on every execution. Tool
// calls run sequentially, so the log needs no locking.
type recordingHandler struct {
	name string
	log  *[]string
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Spec() llmwire.ToolSpec {
	return llmwire.ToolSpec{Name: h.name, Parameters: map[string]any{"type": "object"}}
}

func (h *recordingHandler) Execute(_ context.Context, _ json.RawMessage) string {
	*h.log = append(*h.log, h.name)
	return `{"tool":"` + h.name + `"}`
}

// instantHandler is a tool stub that completes immediately.
type instantHandler struct {
	name string
}

func (h *instantHandler) Name() string { return h.name }

func (h *instantHandler) Spec() llmwire.ToolSpec {
	return llmwire.ToolSpec{Name: h.name, Parameters: map[string]any{"type": "object"}}
}

func (h *instantHandler) Execute(_ context.Context, _ json.RawMessage) string {
	return `{"status":"completed"}`
}

// blockingAdapter holds every Complete call until release is closed.
type blockingAdapter struct {
	release chan struct{}
}

func (a *blockingAdapter) ID() string { return "blocking" }

func (a *blockingAdapter) Complete(_ context.Context, _ []llmwire.Message, _ []llmwire.ToolSpec) (*llmwire.Completion, error) {
	<-a.release
	return &llmwire.Completion{Content: "released"}, nil
}
