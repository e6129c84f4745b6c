// Package lmstudio adapts LM Studio's OpenAI-compatible server
// (/v1/models, /v1/completions, /v1/chat/completions) to llm.Client.
package lmstudio

import (
	"context"
	"errors"

	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

// DefaultBaseURL is LM Studio's default server address.
const DefaultBaseURL = "http://localhost:1234"

// Client talks to one LM Studio server.
type Client struct {
	tr *llm.Transport
}

var _ llm.Client = (*Client)(nil)

// New returns a Client. An empty opts.BaseURL selects DefaultBaseURL.
func New(opts llm.TransportOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &Client{tr: llm.NewTransport(types.ProviderLMStudio, opts)}
}

func (c *Client) Provider() types.Provider { return types.ProviderLMStudio }

// BaseURL returns the server address without a trailing slash.
func (c *Client) BaseURL() string { return c.tr.BaseURL() }

// ListModels returns the loaded models. LM Studio does not report sizes, so
// Size is always nil.
func (c *Client) ListModels(ctx context.Context) ([]types.ModelInfo, error) {
	var list modelsResponse
	if err := c.tr.GetJSON(ctx, "list models", "/v1/models", &list); err != nil {
		return nil, err
	}
	models := make([]types.ModelInfo, 0, len(list.Data))
	for _, m := range list.Data {
		name, quant := parseModelName(m.ID)
		ctxLen := llm.DefaultContextLength
		models = append(models, types.ModelInfo{
			ID:            m.ID,
			Name:          name,
			Provider:      types.ProviderLMStudio,
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
	body := completionRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
		Stream:      false,
	}
	var out completionResponse
	elapsed, err := c.tr.PostJSON(ctx, "generate", "/v1/completions", body, &out)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	if out.Choices == nil {
		return types.GenerateResponse{}, missingChoices("generate")
	}
	var text string
	if choices := *out.Choices; len(choices) > 0 {
		text = choices[0].Text
	}
	tokens := out.Usage.completionTokens()
	return types.GenerateResponse{
		Text:             text,
		Model:            modelOr(out.Model, req.Model),
		TokensGenerated:  tokens,
		GenerationTimeMs: elapsed,
		TokensPerSecond:  llm.TokensPerSecond(tokens, elapsed),
	}, nil
}

func (c *Client) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	if err := llm.ValidateChat(req); err != nil {
		return types.ChatResponse{}, err
	}
	opts := llm.ResolveOptions(req.Temperature, req.MaxTokens, req.TopP)
	body := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
		Stream:      false,
	}
	var out chatCompletionResponse
	elapsed, err := c.tr.PostJSON(ctx, "chat", "/v1/chat/completions", body, &out)
	if err != nil {
		return types.ChatResponse{}, err
	}
	if out.Choices == nil {
		return types.ChatResponse{}, missingChoices("chat")
	}
	msg := types.AssistantMessage("")
	if choices := *out.Choices; len(choices) > 0 {
		msg = choices[0].Message
		if msg.Role == "" {
			msg.Role = types.RoleAssistant
		}
	}
	tokens := out.Usage.completionTokens()
	return types.ChatResponse{
		Message:          msg,
		Model:            modelOr(out.Model, req.Model),
		TokensGenerated:  tokens,
		GenerationTimeMs: elapsed,
		TokensPerSecond:  llm.TokensPerSecond(tokens, elapsed),
	}, nil
}

// HealthCheck probes /v1/models.
func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.tr.Probe(ctx, "/v1/models")
}

func (c *Client) GetModelInfo(ctx context.Context, modelID string) (types.ModelInfo, error) {
	return llm.FindModel(ctx, c, modelID)
}

func missingChoices(op string) error {
	return &llm.ProtocolError{Provider: types.ProviderLMStudio, Op: op, Err: errors.New("missing choices field")}
}

func modelOr(reported, requested string) string {
	if reported != "" {
		return reported
	}
	return requested
}
