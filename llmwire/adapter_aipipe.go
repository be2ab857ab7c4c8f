package llmwire

const aipipeDefaultBase = "https://aipipe.org/openrouter/v1"

// newAIPipeAdapter builds an adapter for the AIPipe relay. The relay exposes
// the OpenAI chat-completions dialect, tool calling included, so the openai
// adapter core is reused with the relay endpoint and identifier.
func newAIPipeAdapter(cfg ProviderConfig, opts ...AdapterOption) *chatCompletionsAdapter {
	return &chatCompletionsAdapter{
		id:       ProviderAIPipe,
		cfg:      cfg,
		settings: applyOptions(aipipeDefaultBase, opts),
	}
}
