package llm

import (
	"testing"

	"llmrouter/pkg/types"
)

func TestLookupProviderAliases(t *testing.T) {
	cases := map[string]types.Provider{
		"ollama":     types.ProviderOllama,
		"  Ollama  ": types.ProviderOllama,
		"OLLAMA":     types.ProviderOllama,
		"lmstudio":   types.ProviderLMStudio,
		"LM Studio":  types.ProviderLMStudio,
		"lm-studio":  types.ProviderLMStudio,
		"lm_studio":  types.ProviderLMStudio,
		"LMS":        types.ProviderLMStudio,
	}
	for in, want := range cases {
		got, ok := LookupProvider(in)
		if !ok || got != want {
			t.Fatalf("LookupProvider(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "olama", "openai", "lm"} {
		if p, ok := LookupProvider(in); ok {
			t.Fatalf("LookupProvider(%q) unexpectedly resolved to %q", in, p)
		}
	}
}

func TestParseProviderRejectsUnknown(t *testing.T) {
	if _, err := ParseProvider("gpt"); !IsInvalidRequest(err) {
		t.Fatalf("want InvalidRequestError, got %v", err)
	}
	p, err := ParseProvider("lm studio")
	if err != nil || p != types.ProviderLMStudio {
		t.Fatalf("ParseProvider: %q %v", p, err)
	}
}

func TestDefaultAndAlternate(t *testing.T) {
	if DefaultProvider() != types.ProviderOllama {
		t.Fatalf("default=%q", DefaultProvider())
	}
	if Alternate(types.ProviderOllama) != types.ProviderLMStudio || Alternate(types.ProviderLMStudio) != types.ProviderOllama {
		t.Fatalf("alternate mapping broken")
	}
}
