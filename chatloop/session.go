package chatloop

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/agentchat/agentchat/llmwire"
	"github.com/agentchat/agentchat/tools"
)

// defaultSystemPrompt is prepended to every provider request but never stored
// in the transcript itself.
const defaultSystemPrompt = "You are an intelligent agent with access to multiple tools. " +
	"When a user asks a question, analyze what they need and use the appropriate tools to help them. " +
	"You can use multiple tools in sequence to accomplish complex tasks. " +
	"Available tools: google_search for web searches, ai_pipe for AI workflows, execute_javascript for running code. " +
	"Always respond naturally and explain what you're doing when using tools. " +
	"Be conversational and helpful, explaining your reasoning when using tools."

// defaultMaxIterations bounds a single reasoning run.
const defaultMaxIterations = 10

var (
	// ErrRunInFlight is returned by SendMessage when a reasoning run is
	// already executing on the session.
	ErrRunInFlight = errors.New("a reasoning run is already in flight")

	// ErrLoopExhausted is returned when a run hits the iteration bound while
	// the model is still requesting tools.
	ErrLoopExhausted = errors.New("maximum reasoning loops reached")
)

// TerminationReason records why a reasoning run ended.
type TerminationReason string

const (
	TerminationDone     TerminationReason = "done"
	TerminationMaxLoops TerminationReason = "max_loops"
	TerminationError    TerminationReason = "error"
)

// RunState is a snapshot of the most recent reasoning run.
type RunState struct {
	Iteration     int
	MaxIterations int
	Terminated    bool
	Reason        TerminationReason
}

// SessionConfig tunes a Session's reasoning loop.
type SessionConfig struct {
	MaxIterations int
	SystemPrompt  string
	Retry         RetryPolicy
	EventBuffer   int
}

// DefaultSessionConfig returns the standard configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxIterations: defaultMaxIterations,
		SystemPrompt:  defaultSystemPrompt,
		Retry:         DefaultRetryPolicy(),
	}
}

// Session owns one conversation and drives the reasoning loop: send the
// transcript to the provider, execute any tool calls the model requested,
// append the results, and repeat until the model answers in plain text or the
// iteration bound is reached.
type Session struct {
	id       string
	registry *tools.Registry
	conv     *Conversation
	emitter  *EventEmitter
	config   SessionConfig

	mu          sync.Mutex
	providerCfg llmwire.ProviderConfig
	adapter     llmwire.ProviderAdapter
	adapterOpts []llmwire.AdapterOption
	running     bool
	lastErr     string
	lastState   RunState
}

// NewSession creates an unconfigured Session. A nil config selects the
// defaults. Configure must be called before the first SendMessage.
func NewSession(registry *tools.Registry, config *SessionConfig) *Session {
	cfg := DefaultSessionConfig()
	if config != nil {
		cfg = *config
		if cfg.MaxIterations <= 0 {
			cfg.MaxIterations = defaultMaxIterations
		}
		if cfg.SystemPrompt == "" {
			cfg.SystemPrompt = defaultSystemPrompt
		}
	}
	id := uuid.New().String()
	return &Session{
		id:       id,
		registry: registry,
		conv:     NewConversation(),
		emitter:  NewEventEmitter(id, cfg.EventBuffer),
		config:   cfg,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Configure selects the provider and model for subsequent runs. Switching
// providers mid-conversation is allowed; the transcript carries over and the
// next run is sent to the new provider. The previous adapter is kept when the
// new configuration is rejected.
func (s *Session) Configure(cfg llmwire.ProviderConfig, opts ...llmwire.AdapterOption) error {
	adapter, err := llmwire.NewAdapter(cfg, opts...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.providerCfg = cfg
	s.adapter = adapter
	s.adapterOpts = opts
	return nil
}

// ProviderConfig returns the active provider configuration.
func (s *Session) ProviderConfig() llmwire.ProviderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providerCfg
}

// History returns a copy of the conversation transcript.
func (s *Session) History() []Turn { return s.conv.History() }

// Loading reports whether a reasoning run is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Err returns the last surfaced error message, or "" when the previous run
// succeeded.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastRun returns a snapshot of the most recent run's state.
func (s *Session) LastRun() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState
}

// Events returns the session's event channel.
func (s *Session) Events() <-chan SessionEvent { return s.emitter.Events() }

// Close releases the session's event channel.
func (s *Session) Close() { s.emitter.Close() }

// SendMessage appends text as a user turn and drives the reasoning loop to
// completion. It returns once the model produces a plain-text answer, the
// iteration bound is hit, or an error aborts the run. The transcript built so
// far is preserved on every path; on configuration errors the transcript is
// not touched at all.
func (s *Session) SendMessage(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunInFlight
	}
	if s.adapter == nil || s.providerCfg.Credential == "" {
		err := &llmwire.ConfigurationError{Message: "Please configure your API key in the settings"}
		s.lastErr = err.Message
		s.mu.Unlock()
		return err
	}
	s.running = true
	s.lastErr = ""
	adapter := s.adapter
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.conv.AppendUser(text)
	s.emitter.Emit(EventRunStart, map[string]any{"text": text})
	s.emitter.Emit(EventUserTurn, map[string]any{"content": text})

	state := RunState{MaxIterations: s.config.MaxIterations}
	defer func() {
		s.mu.Lock()
		s.lastState = state
		s.mu.Unlock()
	}()

	specs := s.registry.Specs()

	for state.Iteration < state.MaxIterations {
		messages := append(
			[]llmwire.Message{llmwire.SystemMessage(s.config.SystemPrompt)},
			s.conv.Messages()...,
		)

		completion, err := retryComplete(ctx, s.config.Retry, func(ctx context.Context) (*llmwire.Completion, error) {
			return adapter.Complete(ctx, messages, specs)
		})
		if err != nil {
			state.Terminated = true
			state.Reason = TerminationError
			s.setErr(err.Error())
			s.emitter.Emit(EventError, map[string]any{"error": err.Error()})
			return err
		}

		s.conv.AppendAssistant(completion.Content, completion.ToolCalls)
		s.emitter.Emit(EventAssistantTurn, map[string]any{
			"content":    completion.Content,
			"tool_calls": len(completion.ToolCalls),
		})

		if !completion.HasToolCalls() {
			state.Terminated = true
			state.Reason = TerminationDone
			break
		}

		for _, call := range completion.ToolCalls {
			s.emitter.Emit(EventToolCallStart, map[string]any{
				"id":   call.ID,
				"name": call.Name,
			})

			result, err := s.registry.Execute(ctx, call.Name, json.RawMessage(call.Arguments))
			if err != nil {
				payload, _ := json.Marshal(map[string]string{"error": err.Error()})
				result = string(payload)
			}

			s.conv.AppendToolResult(call.ID, call.Name, result)
			s.emitter.Emit(EventToolCallEnd, map[string]any{
				"id":   call.ID,
				"name": call.Name,
			})
		}

		state.Iteration++
	}

	if !state.Terminated {
		state.Terminated = true
		state.Reason = TerminationMaxLoops
		s.setErr(ErrLoopExhausted.Error())
		s.emitter.Emit(EventError, map[string]any{"error": ErrLoopExhausted.Error()})
		return ErrLoopExhausted
	}

	s.emitter.Emit(EventRunEnd, map[string]any{
		"iterations": state.Iteration,
		"reason":     string(state.Reason),
	})
	return nil
}

func (s *Session) setErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}
