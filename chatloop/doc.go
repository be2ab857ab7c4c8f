// Package chatloop implements the reasoning-loop orchestrator: the state
// machine that alternates between asking the model and running the tools it
// requested, bounded by a fixed maximum iteration count.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - Session: the orchestrator owning the conversation transcript,
//     the provider adapter, tool dispatch, and run state.
//   - Conversation: the append-only ordered transcript, mutated only by the
//     Session and read by the presentation layer.
//   - EventEmitter: typed event stream for host application integration.
//   - RetryPolicy: orchestrator-owned retry for transient provider errors
//     (adapters themselves never retry).
//
// # Quick Start
//
//	session := chatloop.NewSession(tools.NewDefaultRegistry(creds), nil)
//	if err := session.Configure(llmwire.ProviderConfig{
//	    Provider:   llmwire.ProviderOpenAI,
//	    Model:      "gpt-4o-mini",
//	    Credential: apiKey,
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := session.SendMessage(ctx, "What's 2+2, compute it with code"); err != nil {
//	    log.Fatal(err)
//	}
//	for _, turn := range session.History() {
//	    fmt.Printf("[%s] %s\n", turn.Role, turn.Content)
//	}
//
// One run executes at a time per Session; a SendMessage arriving while a run
// is in flight is rejected with ErrRunInFlight. Tool calls within an
// assistant turn execute strictly sequentially, in the order received.
package chatloop
