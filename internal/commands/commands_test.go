package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmrouter/internal/hardware"
	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

type fakeRouter struct {
	lastHint string
	lastGen  types.GenerateRequest
	lastChat types.ChatRequest
	err      error
}

func (f *fakeRouter) DiscoverServers(context.Context) types.ServerStatus {
	return types.ServerStatus{Ollama: types.ServerConnectionStatus{Connected: true, ModelsLoaded: []string{"llama3"}}}
}

func (f *fakeRouter) ListAllModels(context.Context) []types.ModelInfo {
	return []types.ModelInfo{{ID: "llama3", Provider: types.ProviderOllama, Status: types.StatusLoaded}}
}

func (f *fakeRouter) GenerateWithFallback(_ context.Context, hint string, req types.GenerateRequest) (types.GenerateResponse, error) {
	f.lastHint, f.lastGen = hint, req
	return types.GenerateResponse{Text: "code", Model: req.Model}, f.err
}

func (f *fakeRouter) ChatWithFallback(_ context.Context, hint string, req types.ChatRequest) (types.ChatResponse, error) {
	f.lastHint, f.lastChat = hint, req
	return types.ChatResponse{Message: types.AssistantMessage("hi"), Model: req.Model}, f.err
}

type fixedHardware struct {
	info types.HardwareInfo
	err  error
}

func (h fixedHardware) Detect(context.Context) (types.HardwareInfo, error) { return h.info, h.err }

func TestGenerateCodeFixesBudget(t *testing.T) {
	r := &fakeRouter{}
	s := New(r, fixedHardware{})

	out, err := s.Invoke(context.Background(), GenerateCode, json.RawMessage(`{"provider":"lmstudio","model":"m","prompt":"p","temperature":0.1}`))
	require.NoError(t, err)
	assert.Equal(t, "code", out.(types.GenerateResponse).Text)
	assert.Equal(t, "lmstudio", r.lastHint)
	require.NotNil(t, r.lastGen.MaxTokens)
	assert.Equal(t, 2048, *r.lastGen.MaxTokens)
	require.NotNil(t, r.lastGen.TopP)
	assert.Equal(t, 0.9, *r.lastGen.TopP)
	require.NotNil(t, r.lastGen.Temperature)
	assert.Equal(t, 0.1, *r.lastGen.Temperature)
	assert.False(t, r.lastGen.Stream)
}

func TestChatWithModel(t *testing.T) {
	r := &fakeRouter{}
	s := New(r, fixedHardware{})

	out, err := s.Invoke(context.Background(), ChatWithModel, json.RawMessage(`{"provider":"ollama","model":"m","messages":[{"role":"user","content":"hey"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", out.(types.ChatResponse).Message.Content)
	assert.Nil(t, r.lastChat.Temperature)
	assert.Equal(t, []types.Message{types.UserMessage("hey")}, r.lastChat.Messages)
}

func TestRouterErrorsPassThrough(t *testing.T) {
	want := &llm.TransportError{Provider: types.ProviderLMStudio, Op: "generate", Err: errors.New("refused")}
	s := New(&fakeRouter{err: want}, fixedHardware{})
	_, err := s.Invoke(context.Background(), GenerateCode, json.RawMessage(`{"provider":"x","model":"m","prompt":"p"}`))
	assert.ErrorIs(t, err, want)
}

func TestParameterlessCommands(t *testing.T) {
	hw := types.HardwareInfo{CPU: "cpu", RAMGB: 8, OS: "linux", Cores: 4, Threads: 8}
	s := New(&fakeRouter{}, fixedHardware{info: hw})

	for _, params := range []json.RawMessage{nil, json.RawMessage(`null`), json.RawMessage(`{}`)} {
		out, err := s.Invoke(context.Background(), DetectLLMServers, params)
		require.NoError(t, err)
		assert.True(t, out.(types.ServerStatus).Ollama.Connected)
	}

	out, err := s.Invoke(context.Background(), ListAvailableModels, nil)
	require.NoError(t, err)
	assert.Len(t, out.([]types.ModelInfo), 1)

	out, err = s.Invoke(context.Background(), GetHardwareInfo, nil)
	require.NoError(t, err)
	assert.Equal(t, hw, out)
}

func TestGetOptimalModel(t *testing.T) {
	s := New(&fakeRouter{}, fixedHardware{info: types.HardwareInfo{RAMGB: 8}})

	out, err := s.Invoke(context.Background(), GetOptimalModel, nil)
	require.NoError(t, err)
	assert.Equal(t, hardware.ModelTiny, out.(types.RecommendationResponse).Model)

	out, err = s.Invoke(context.Background(), GetOptimalModel, json.RawMessage(`{"hardware":{"cpu":"x","ram":32,"vram":16,"os":"windows","cores":8,"threads":16}}`))
	require.NoError(t, err)
	assert.Equal(t, hardware.ModelLarge, out.(types.RecommendationResponse).Model)

	failing := New(&fakeRouter{}, fixedHardware{err: errors.New("no /proc")})
	_, err = failing.Invoke(context.Background(), GetOptimalModel, nil)
	require.Error(t, err)
}

func TestInvokeErrors(t *testing.T) {
	s := New(&fakeRouter{}, fixedHardware{})

	_, err := s.Invoke(context.Background(), "format_disk", nil)
	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 404, unknown.StatusCode())

	_, err = s.Invoke(context.Background(), GenerateCode, json.RawMessage(`{"prompt":`))
	assert.True(t, llm.IsInvalidRequest(err))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		ChatWithModel, DetectLLMServers, GenerateCode, GetHardwareInfo, GetOptimalModel, ListAvailableModels,
	}, Names())
}
