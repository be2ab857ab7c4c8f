package llmwire

// ProviderInfo describes one provider in the built-in catalog.
type ProviderInfo struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"display_name"`
	Models        []string `json:"models"`
	SupportsTools bool     `json:"supports_tools"`
}

// Catalog is the fixed set of supported providers and their known models.
// Providers without native tool calling in this integration (anthropic,
// google) are driven in text-only mode by their adapters.
var Catalog = []ProviderInfo{
	{
		ID: ProviderOpenAI, DisplayName: "OpenAI",
		Models:        []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"},
		SupportsTools: true,
	},
	{
		ID: ProviderAnthropic, DisplayName: "Anthropic",
		Models: []string{"claude-3-5-sonnet-20241022", "claude-3-haiku-20240307"},
	},
	{
		ID: ProviderGoogle, DisplayName: "Google",
		Models: []string{"gemini-1.5-pro", "gemini-1.5-flash"},
	},
	{
		ID: ProviderAIPipe, DisplayName: "AIPipe",
		Models: []string{
			"openai/gpt-4.1-nano", "openai/gpt-4o", "openai/gpt-4o-mini",
			"anthropic/claude-3-5-sonnet", "google/gemini-pro",
		},
		SupportsTools: true,
	},
}

// GetProviderInfo returns the catalog entry for a provider, or nil if unknown.
func GetProviderInfo(providerID string) *ProviderInfo {
	for i := range Catalog {
		if Catalog[i].ID == providerID {
			return &Catalog[i]
		}
	}
	return nil
}

// Providers returns the ids of all supported providers, in catalog order.
func Providers() []string {
	ids := make([]string, len(Catalog))
	for i, p := range Catalog {
		ids[i] = p.ID
	}
	return ids
}

// DefaultModelFor returns the first catalog model for a provider, or "" if
// the provider is unknown.
func DefaultModelFor(providerID string) string {
	if info := GetProviderInfo(providerID); info != nil && len(info.Models) > 0 {
		return info.Models[0]
	}
	return ""
}

// SupportsNativeTools reports whether a provider's adapter passes the tool
// catalog and prior tool turns through to the provider.
func SupportsNativeTools(providerID string) bool {
	info := GetProviderInfo(providerID)
	return info != nil && info.SupportsTools
}
