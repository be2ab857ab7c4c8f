// Package llmwire normalizes heterogeneous LLM provider wire protocols into a
// single abstract conversation format.
//
// # Architecture
//
// The package follows a three-layer design:
//
//   - Shared types: Message, ToolCall, ToolSpec, ProviderConfig, Completion
//   - ProviderAdapter interface: one implementation per provider wire format
//   - Error taxonomy: typed errors with retryability classification
//
// Each adapter owns exactly one provider dialect. OpenAI and AIPipe speak the
// chat-completions format with native tool calling; Anthropic and Google are
// driven in text-only mode, where tool turns are filtered from the outbound
// payload and the normalized response never carries tool calls.
//
// # Quick Start
//
//	adapter, err := llmwire.NewAdapter(llmwire.ProviderConfig{
//	    Provider:   llmwire.ProviderOpenAI,
//	    Model:      "gpt-4o-mini",
//	    Credential: os.Getenv("OPENAI_API_KEY"),
//	})
//
//	comp, err := adapter.Complete(ctx, []llmwire.Message{
//	    llmwire.UserMessage("Hello"),
//	}, nil)
//	fmt.Println(comp.Content)
//
// An adapter performs exactly one outbound HTTP request per Complete call and
// never retries; retry policy belongs to the caller.
package llmwire
