package llm

import (
	"math"
	"strings"

	"llmrouter/pkg/types"
)

// Sampling defaults applied whenever a caller leaves an option unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultTopP        = 0.9

	// DefaultContextLength is reported for models whose backend does not
	// expose a context window.
	DefaultContextLength = 4096
)

// Options are sampling parameters with defaults applied.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// ResolveOptions fills unset values with the package defaults.
func ResolveOptions(temperature *float64, maxTokens *int, topP *float64) Options {
	o := Options{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens, TopP: DefaultTopP}
	if temperature != nil {
		o.Temperature = *temperature
	}
	if maxTokens != nil {
		o.MaxTokens = *maxTokens
	}
	if topP != nil {
		o.TopP = *topP
	}
	return o
}

// ValidateGenerate checks a generate request before it reaches the network.
func ValidateGenerate(req types.GenerateRequest) error {
	if strings.TrimSpace(req.Model) == "" {
		return &InvalidRequestError{Field: "model", Reason: "is required"}
	}
	return validateSampling(req.Temperature, req.MaxTokens, req.TopP)
}

// ValidateChat checks a chat request before it reaches the network.
func ValidateChat(req types.ChatRequest) error {
	if strings.TrimSpace(req.Model) == "" {
		return &InvalidRequestError{Field: "model", Reason: "is required"}
	}
	if len(req.Messages) == 0 {
		return &InvalidRequestError{Field: "messages", Reason: "at least one message is required"}
	}
	for _, m := range req.Messages {
		if !m.Role.Valid() {
			return &InvalidRequestError{Field: "messages", Reason: "unknown role " + string(m.Role)}
		}
	}
	return validateSampling(req.Temperature, req.MaxTokens, req.TopP)
}

func validateSampling(temperature *float64, maxTokens *int, topP *float64) error {
	if temperature != nil && (!finite(*temperature) || *temperature < 0) {
		return &InvalidRequestError{Field: "temperature", Reason: "must be a finite number >= 0"}
	}
	if topP != nil && (!finite(*topP) || *topP < 0 || *topP > 1) {
		return &InvalidRequestError{Field: "top_p", Reason: "must be within [0, 1]"}
	}
	if maxTokens != nil && *maxTokens <= 0 {
		return &InvalidRequestError{Field: "max_tokens", Reason: "must be > 0"}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
