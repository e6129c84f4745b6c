// Package ollama adapts the Ollama REST API (/api/tags, /api/generate,
// /api/chat) to llm.Client.
package ollama

import (
	"context"
	"errors"

	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

// DefaultBaseURL is where a stock `ollama serve` listens.
const DefaultBaseURL = "http://localhost:11434"

// Client talks to one Ollama server.
type Client struct {
	tr *llm.Transport
}

var _ llm.Client = (*Client)(nil)

// New returns a Client. An empty opts.BaseURL selects DefaultBaseURL.
func New(opts llm.TransportOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{tr: llm.NewTransport(types.ProviderOllama, opts)}
}

func (c *Client) Provider() types.Provider { return types.ProviderOllama }

// BaseURL returns the server address without a trailing slash.
func (c *Client) BaseURL() string { return c.tr.BaseURL() }

func (c *Client) ListModels(ctx context.Context) ([]types.ModelInfo, error) {
	var tags tagsResponse
	if err := c.tr.GetJSON(ctx, "list models", "/api/tags", &tags); err != nil {
		return nil, err
	}
	models := make([]types.ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		name, quant := parseModelName(m.Name)
		ctxLen := llm.DefaultContextLength
		models = append(models, types.ModelInfo{
			ID:            m.Name,
			Name:          name,
			Size:          m.Size,
			Provider:      types.ProviderOllama,
			Status:        types.StatusLoaded,
			ContextLength: &ctxLen,
			Quantization:  quant,
		})
	}
	return models, nil
}

func (c *Client) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	if err := llm.ValidateGenerate(req); err != nil {
		return types.GenerateResponse{}, err
	}
	opts := llm.ResolveOptions(req.Temperature, req.MaxTokens, req.TopP)
	body := generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Stream:  false,
		Options: options{Temperature: opts.Temperature, TopP: opts.TopP, NumPredict: opts.MaxTokens},
	}
	var out generateResponse
	elapsed, err := c.tr.PostJSON(ctx, "generate", "/api/generate", body, &out)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	if out.Response == nil {
		return types.GenerateResponse{}, &llm.ProtocolError{
			Provider: types.ProviderOllama, Op: "generate", Err: errors.New("missing response field"),
		}
	}
	return types.GenerateResponse{
		Text:             *out.Response,
		Model:            modelOr(out.Model, req.Model),
		TokensGenerated:  out.EvalCount,
		GenerationTimeMs: elapsed,
		TokensPerSecond:  llm.TokensPerSecond(out.EvalCount, elapsed),
	}, nil
}

func (c *Client) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	if err := llm.ValidateChat(req); err != nil {
		return types.ChatResponse{}, err
	}
	opts := llm.ResolveOptions(req.Temperature, req.MaxTokens, req.TopP)
	body := chatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options:  options{Temperature: opts.Temperature, TopP: opts.TopP, NumPredict: opts.MaxTokens},
	}
	var out chatResponse
	elapsed, err := c.tr.PostJSON(ctx, "chat", "/api/chat", body, &out)
	if err != nil {
		return types.ChatResponse{}, err
	}
	if out.Message == nil {
		return types.ChatResponse{}, &llm.ProtocolError{
			Provider: types.ProviderOllama, Op: "chat", Err: errors.New("missing message field"),
		}
	}
	msg := *out.Message
	if msg.Role == "" {
		msg.Role = types.RoleAssistant
	}
	return types.ChatResponse{
		Message:          msg,
		Model:            modelOr(out.Model, req.Model),
		TokensGenerated:  out.EvalCount,
		GenerationTimeMs: elapsed,
		TokensPerSecond:  llm.TokensPerSecond(out.EvalCount, elapsed),
	}, nil
}

// HealthCheck probes /api/tags.
func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.tr.Probe(ctx, "/api/tags")
}

func (c *Client) GetModelInfo(ctx context.Context, modelID string) (types.ModelInfo, error) {
	return llm.FindModel(ctx, c, modelID)
}

func modelOr(reported, requested string) string {
	if reported != "" {
		return reported
	}
	return requested
}
