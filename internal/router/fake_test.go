package router

import (
	"context"
	"sync/atomic"

	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

// fakeClient is an in-memory llm.Client with scripted outcomes.
type fakeClient struct {
	provider types.Provider
	healthy  bool
	models   []types.ModelInfo
	listErr  error
	genErr   error
	chatErr  error

	generateCalls atomic.Int32
	chatCalls     atomic.Int32
}

var _ llm.Client = (*fakeClient)(nil)

func newFake(p types.Provider) *fakeClient {
	return &fakeClient{provider: p, healthy: true}
}

func (f *fakeClient) Provider() types.Provider { return f.provider }

func (f *fakeClient) ListModels(context.Context) ([]types.ModelInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.models, nil
}

func (f *fakeClient) Generate(_ context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	f.generateCalls.Add(1)
	if f.genErr != nil {
		return types.GenerateResponse{}, f.genErr
	}
	return types.GenerateResponse{Text: string(f.provider) + ":" + req.Prompt, Model: req.Model, TokensGenerated: 10, GenerationTimeMs: 100, TokensPerSecond: 100}, nil
}

func (f *fakeClient) Chat(_ context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	f.chatCalls.Add(1)
	if f.chatErr != nil {
		return types.ChatResponse{}, f.chatErr
	}
	return types.ChatResponse{Message: types.AssistantMessage(string(f.provider)), Model: req.Model}, nil
}

func (f *fakeClient) HealthCheck(context.Context) bool { return f.healthy }

func (f *fakeClient) GetModelInfo(ctx context.Context, id string) (types.ModelInfo, error) {
	return llm.FindModel(ctx, f, id)
}

func model(p types.Provider, id string) types.ModelInfo {
	return types.ModelInfo{ID: id, Name: id, Provider: p, Status: types.StatusLoaded}
}
