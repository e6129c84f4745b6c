package llm

import (
	"strconv"
	"strings"

	"llmrouter/pkg/types"
)

// providerAliases maps normalized (lowercased, trimmed) names to providers.
var providerAliases = map[string]types.Provider{
	"ollama":    types.ProviderOllama,
	"lmstudio":  types.ProviderLMStudio,
	"lm studio": types.ProviderLMStudio,
	"lm-studio": types.ProviderLMStudio,
	"lm_studio": types.ProviderLMStudio,
	"lms":       types.ProviderLMStudio,
}

// LookupProvider resolves a provider name or alias case-insensitively.
func LookupProvider(name string) (types.Provider, bool) {
	p, ok := providerAliases[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ParseProvider is LookupProvider for callers that want unknown names to fail.
func ParseProvider(name string) (types.Provider, error) {
	if p, ok := LookupProvider(name); ok {
		return p, nil
	}
	return "", &InvalidRequestError{Field: "provider", Reason: "unknown provider " + strconv.Quote(name)}
}

// DefaultProvider is the primary used when a hint names no known provider.
func DefaultProvider() types.Provider { return types.Providers[0] }

// Alternate returns the provider used as fallback for p.
func Alternate(p types.Provider) types.Provider {
	for _, other := range types.Providers {
		if other != p {
			return other
		}
	}
	return p
}
