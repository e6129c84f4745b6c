package httpapi

import (
	"context"
	"encoding/json"

	"llmrouter/internal/commands"
	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

type fakeService struct {
	ready    bool
	genErr   error
	lastHint string
	lastGen  types.GenerateRequest
	lastChat types.ChatRequest
	models   []types.ModelInfo
}

func (f *fakeService) DiscoverServers(context.Context) types.ServerStatus {
	msg := "LM Studio server not running. Start LM Studio and enable server mode."
	return types.ServerStatus{
		Ollama:   types.ServerConnectionStatus{Connected: true, ModelsLoaded: []string{"llama3:8b"}},
		LMStudio: types.ServerConnectionStatus{ModelsLoaded: []string{}, Error: &msg},
	}
}

func (f *fakeService) ListAllModels(context.Context) []types.ModelInfo { return f.models }

func (f *fakeService) GetModelInfo(_ context.Context, provider, id string) (types.ModelInfo, error) {
	p, err := llm.ParseProvider(provider)
	if err != nil {
		return types.ModelInfo{}, err
	}
	for _, m := range f.models {
		if m.Provider == p && m.ID == id {
			return m, nil
		}
	}
	return types.ModelInfo{}, &llm.NotFoundError{Provider: p, ModelID: id}
}

func (f *fakeService) GenerateWithFallback(_ context.Context, hint string, req types.GenerateRequest) (types.GenerateResponse, error) {
	f.lastHint, f.lastGen = hint, req
	if f.genErr != nil {
		return types.GenerateResponse{}, f.genErr
	}
	return types.GenerateResponse{Text: "ok", Model: req.Model, TokensGenerated: 4, GenerationTimeMs: 200, TokensPerSecond: 20}, nil
}

func (f *fakeService) ChatWithFallback(_ context.Context, hint string, req types.ChatRequest) (types.ChatResponse, error) {
	f.lastHint, f.lastChat = hint, req
	if f.genErr != nil {
		return types.ChatResponse{}, f.genErr
	}
	return types.ChatResponse{Message: types.AssistantMessage("hello"), Model: req.Model}, nil
}

func (f *fakeService) Ready(context.Context) bool { return f.ready }

type fakeInvoker struct {
	lastName   string
	lastParams json.RawMessage
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, params json.RawMessage) (any, error) {
	f.lastName, f.lastParams = name, params
	switch name {
	case commands.GetHardwareInfo:
		return types.HardwareInfo{CPU: "test cpu", RAMGB: 16, OS: "linux", Cores: 4, Threads: 8}, nil
	case commands.GetOptimalModel:
		return types.RecommendationResponse{Model: "codellama-7b-instruct.Q4_K_M.gguf"}, nil
	case commands.DetectLLMServers:
		return map[string]bool{"ok": true}, nil
	}
	return nil, &commands.UnknownCommandError{Name: name}
}

func lmModel(id string) types.ModelInfo {
	return types.ModelInfo{ID: id, Name: id, Provider: types.ProviderLMStudio, Status: types.StatusLoaded}
}
