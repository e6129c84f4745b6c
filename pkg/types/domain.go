package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Provider identifies a backend family. The set is closed; Providers lists it
// in declaration order, which is also the default routing priority.
type Provider string

const (
	ProviderOllama   Provider = "Ollama"
	ProviderLMStudio Provider = "LMStudio"
)

// Providers is every known provider, primary first.
var Providers = []Provider{ProviderOllama, ProviderLMStudio}

// Label is the human-facing name of the provider.
func (p Provider) Label() string {
	switch p {
	case ProviderOllama:
		return "Ollama"
	case ProviderLMStudio:
		return "LM Studio"
	default:
		return string(p)
	}
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// ModelState is the lifecycle state of a model as seen on its backend.
type ModelState string

const (
	StateLoaded      ModelState = "Loaded"
	StateNotLoaded   ModelState = "NotLoaded"
	StateDownloading ModelState = "Downloading"
	StateError       ModelState = "Error"
)

// ModelStatus is a ModelState plus the reason when State is StateError.
// It encodes as a bare string ("Loaded") or, for errors, {"Error": "<reason>"}.
type ModelStatus struct {
	State  ModelState
	Reason string
}

var (
	StatusLoaded      = ModelStatus{State: StateLoaded}
	StatusNotLoaded   = ModelStatus{State: StateNotLoaded}
	StatusDownloading = ModelStatus{State: StateDownloading}
)

// StatusError builds an error status carrying reason.
func StatusError(reason string) ModelStatus {
	return ModelStatus{State: StateError, Reason: reason}
}

func (s ModelStatus) String() string {
	if s.State == StateError {
		return fmt.Sprintf("Error(%s)", s.Reason)
	}
	return string(s.State)
}

func (s ModelStatus) MarshalJSON() ([]byte, error) {
	if s.State == StateError {
		return json.Marshal(map[string]string{string(StateError): s.Reason})
	}
	if s.State == "" {
		return json.Marshal(StateNotLoaded)
	}
	return json.Marshal(string(s.State))
}

func (s *ModelStatus) UnmarshalJSON(b []byte) error {
	var state string
	if err := json.Unmarshal(b, &state); err == nil {
		switch ModelState(state) {
		case StateLoaded, StateNotLoaded, StateDownloading:
			*s = ModelStatus{State: ModelState(state)}
			return nil
		}
		return fmt.Errorf("unknown model status %q", state)
	}
	var obj map[string]string
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("model status: %w", err)
	}
	reason, ok := obj[string(StateError)]
	if !ok {
		return fmt.Errorf("model status object without %q key", StateError)
	}
	*s = StatusError(reason)
	return nil
}

// PerformanceMetrics are populated opportunistically; backends that do not
// report them leave ModelInfo.Performance nil.
type PerformanceMetrics struct {
	TokensPerSecond  float64   `json:"tokens_per_second" example:"42.5"`
	TimeToFirstToken *float64  `json:"time_to_first_token" example:"0.35"`
	MemoryUsage      *uint64   `json:"memory_usage" example:"4294967296"`
	LastUpdated      time.Time `json:"last_updated"`
}

// ModelInfo describes one model served by one provider. IDs are unique within
// a provider only. Values are rebuilt on every listing and never cached.
type ModelInfo struct {
	// Backend-native identifier.
	// example: codellama:13b-instruct-q4_0
	ID string `json:"id" example:"codellama:13b-instruct-q4_0"`
	// Display name derived from ID.
	// example: codellama-13b-instruct-q4_0
	Name string `json:"name" example:"codellama-13b-instruct-q4_0"`
	// Size on disk in bytes, when the backend reports it.
	Size        *int64              `json:"size" example:"7365960935"`
	Provider    Provider            `json:"provider" example:"Ollama"`
	Status      ModelStatus         `json:"status" swaggertype:"string" example:"Loaded"`
	Performance *PerformanceMetrics `json:"performance"`
	// Context window in tokens.
	ContextLength *int `json:"context_length" example:"4096"`
	// Quantization tag parsed from ID.
	// example: q4_0
	Quantization *string `json:"quantization" example:"q4_0"`
}

// HardwareInfo summarizes the host for model recommendation.
type HardwareInfo struct {
	CPU     string  `json:"cpu" example:"AMD Ryzen 7 7700X 8-Core Processor"`
	RAMGB   uint64  `json:"ram" example:"32"`
	GPU     *string `json:"gpu" example:"NVIDIA RTX 4070"`
	VRAMGB  uint64  `json:"vram" example:"12"`
	OS      string  `json:"os" example:"linux"`
	Cores   int     `json:"cores" example:"8"`
	Threads int     `json:"threads" example:"16"`
}
