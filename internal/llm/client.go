// Package llm defines the uniform contract every backend adapter implements,
// together with the pieces adapters share: provider aliases, request defaults,
// throughput math, the error taxonomy and the HTTP transport.
//
// Adapters live in subpackages (ollama, lmstudio) and absorb all wire-format
// differences so the router can treat every backend identically.
package llm

import (
	"context"

	"llmrouter/pkg/types"
)

// Client is the capability set shared by all backends.
//
// Implementations must be safe for concurrent use and immutable after
// construction.
type Client interface {
	// Provider returns the backend family this client talks to.
	Provider() types.Provider

	// ListModels returns the models currently offered by the backend.
	ListModels(ctx context.Context) ([]types.ModelInfo, error)

	// Generate runs a single-prompt completion.
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)

	// Chat runs a multi-turn chat completion.
	Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)

	// HealthCheck reports whether the backend answers. It never returns an
	// error: every failure collapses to false.
	HealthCheck(ctx context.Context) bool

	// GetModelInfo returns the listed model whose id equals modelID exactly.
	GetModelInfo(ctx context.Context, modelID string) (types.ModelInfo, error)
}

// FindModel lists models through c and returns the exact id match, or a
// NotFoundError. Adapters use it to implement GetModelInfo.
func FindModel(ctx context.Context, c Client, modelID string) (types.ModelInfo, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return types.ModelInfo{}, err
	}
	for _, m := range models {
		if m.ID == modelID {
			return m, nil
		}
	}
	return types.ModelInfo{}, &NotFoundError{Provider: c.Provider(), ModelID: modelID}
}
