// Package commands exposes router and hardware operations as named
// commands with JSON parameters and results. The HTTP /invoke endpoint, the
// MCP server and the CLI all dispatch through a Surface.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"llmrouter/internal/hardware"
	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

// Command names.
const (
	DetectLLMServers    = "detect_llm_servers"
	ListAvailableModels = "list_available_models"
	GenerateCode        = "generate_code"
	ChatWithModel       = "chat_with_model"
	GetHardwareInfo     = "get_hardware_info"
	GetOptimalModel     = "get_optimal_model"
)

// Router is the subset of *router.Router the surface needs.
type Router interface {
	DiscoverServers(ctx context.Context) types.ServerStatus
	ListAllModels(ctx context.Context) []types.ModelInfo
	GenerateWithFallback(ctx context.Context, hint string, req types.GenerateRequest) (types.GenerateResponse, error)
	ChatWithFallback(ctx context.Context, hint string, req types.ChatRequest) (types.ChatResponse, error)
}

// HardwareDetector supplies host details.
type HardwareDetector interface {
	Detect(ctx context.Context) (types.HardwareInfo, error)
}

// GenerateParams are the parameters of generate_code.
type GenerateParams struct {
	Provider    string   `json:"provider" jsonschema:"backend hint: ollama or lmstudio"`
	Model       string   `json:"model" jsonschema:"backend model id"`
	Prompt      string   `json:"prompt" jsonschema:"prompt to complete"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature, default 0.7"`
}

// ChatParams are the parameters of chat_with_model.
type ChatParams struct {
	Provider    string          `json:"provider" jsonschema:"backend hint: ollama or lmstudio"`
	Model       string          `json:"model" jsonschema:"backend model id"`
	Messages    []types.Message `json:"messages" jsonschema:"conversation so far"`
	Temperature *float64        `json:"temperature,omitempty" jsonschema:"sampling temperature, default 0.7"`
}

// OptimalModelParams are the parameters of get_optimal_model. When Hardware
// is nil the host is probed.
type OptimalModelParams struct {
	Hardware *types.HardwareInfo `json:"hardware,omitempty" jsonschema:"hardware to size for; detected when omitted"`
}

// UnknownCommandError is returned by Invoke for names it does not know.
type UnknownCommandError struct{ Name string }

func (e *UnknownCommandError) Error() string   { return fmt.Sprintf("unknown command %q", e.Name) }
func (e *UnknownCommandError) StatusCode() int { return http.StatusNotFound }

// Surface binds commands to a router and a hardware detector.
type Surface struct {
	router   Router
	hardware HardwareDetector
}

// New returns a Surface. A nil detector probes the host with defaults.
func New(r Router, hw HardwareDetector) *Surface {
	if hw == nil {
		hw = hardware.Detector{}
	}
	return &Surface{router: r, hardware: hw}
}

// Names lists the supported commands in sorted order.
func Names() []string {
	names := []string{DetectLLMServers, ListAvailableModels, GenerateCode, ChatWithModel, GetHardwareInfo, GetOptimalModel}
	sort.Strings(names)
	return names
}

func (s *Surface) DetectServers(ctx context.Context) types.ServerStatus {
	return s.router.DiscoverServers(ctx)
}

func (s *Surface) ListModels(ctx context.Context) []types.ModelInfo {
	return s.router.ListAllModels(ctx)
}

// Generate runs generate_code: the caller chooses only temperature; token
// budget and nucleus sampling are fixed.
func (s *Surface) Generate(ctx context.Context, p GenerateParams) (types.GenerateResponse, error) {
	maxTokens, topP := llm.DefaultMaxTokens, llm.DefaultTopP
	return s.router.GenerateWithFallback(ctx, p.Provider, types.GenerateRequest{
		Model:       p.Model,
		Prompt:      p.Prompt,
		Temperature: p.Temperature,
		MaxTokens:   &maxTokens,
		TopP:        &topP,
	})
}

// Chat runs chat_with_model with the same fixed budget as Generate.
func (s *Surface) Chat(ctx context.Context, p ChatParams) (types.ChatResponse, error) {
	maxTokens, topP := llm.DefaultMaxTokens, llm.DefaultTopP
	return s.router.ChatWithFallback(ctx, p.Provider, types.ChatRequest{
		Model:       p.Model,
		Messages:    p.Messages,
		Temperature: p.Temperature,
		MaxTokens:   &maxTokens,
		TopP:        &topP,
	})
}

func (s *Surface) HardwareInfo(ctx context.Context) (types.HardwareInfo, error) {
	return s.hardware.Detect(ctx)
}

func (s *Surface) OptimalModel(ctx context.Context, p OptimalModelParams) (types.RecommendationResponse, error) {
	info := p.Hardware
	if info == nil {
		detected, err := s.hardware.Detect(ctx)
		if err != nil {
			return types.RecommendationResponse{}, err
		}
		info = &detected
	}
	return types.RecommendationResponse{Model: hardware.RecommendModel(*info)}, nil
}

// Invoke runs the named command with JSON params and returns its result.
// Empty or null params are accepted for commands without parameters.
func (s *Surface) Invoke(ctx context.Context, name string, params json.RawMessage) (any, error) {
	switch name {
	case DetectLLMServers:
		return s.DetectServers(ctx), nil
	case ListAvailableModels:
		return s.ListModels(ctx), nil
	case GenerateCode:
		var p GenerateParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.Generate(ctx, p)
	case ChatWithModel:
		var p ChatParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.Chat(ctx, p)
	case GetHardwareInfo:
		return s.HardwareInfo(ctx)
	case GetOptimalModel:
		var p OptimalModelParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.OptimalModel(ctx, p)
	default:
		return nil, &UnknownCommandError{Name: name}
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &llm.InvalidRequestError{Field: "params", Reason: err.Error()}
	}
	return nil
}
