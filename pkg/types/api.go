package types

// Role is the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role" example:"user"`
	Content string `json:"content" example:"Write a haiku about the ocean."`
}

func SystemMessage(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func UserMessage(content string) Message      { return Message{Role: RoleUser, Content: content} }
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// GenerateRequest is a single-prompt completion request.
type GenerateRequest struct {
	// Backend model identifier. Required.
	// example: codellama:13b-instruct-q4_0
	Model string `json:"model" example:"codellama:13b-instruct-q4_0"`
	// Prompt text to complete.
	// example: func reverse(s string) string {
	Prompt string `json:"prompt" example:"func reverse(s string) string {"`
	// Sampling temperature; 0.7 when omitted.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Maximum number of new tokens; 2048 when omitted.
	// example: 2048
	MaxTokens *int `json:"max_tokens,omitempty" example:"2048"`
	// Nucleus sampling probability; 0.9 when omitted.
	// example: 0.9
	TopP *float64 `json:"top_p,omitempty" example:"0.9"`
	// Accepted for compatibility; responses are never streamed.
	Stream bool `json:"stream,omitempty" example:"false"`
}

// GenerateResponse is the normalized result of a generate call.
type GenerateResponse struct {
	Text string `json:"text"`
	// Model as reported by the backend; may differ from the requested id.
	Model           string  `json:"model" example:"codellama:13b-instruct-q4_0"`
	TokensGenerated int     `json:"tokens_generated" example:"128"`
	// Wall-clock time of the backend round trip in milliseconds.
	GenerationTimeMs int64   `json:"generation_time_ms" example:"3200"`
	TokensPerSecond  float64 `json:"tokens_per_second" example:"40"`
}

// ChatRequest is a multi-turn chat request.
type ChatRequest struct {
	Model       string    `json:"model" example:"llama3:8b"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty" example:"0.7"`
	MaxTokens   *int      `json:"max_tokens,omitempty" example:"2048"`
	TopP        *float64  `json:"top_p,omitempty" example:"0.9"`
	Stream      bool      `json:"stream,omitempty" example:"false"`
}

// ChatResponse is the normalized result of a chat call.
type ChatResponse struct {
	Message          Message `json:"message"`
	Model            string  `json:"model" example:"llama3:8b"`
	TokensGenerated  int     `json:"tokens_generated" example:"128"`
	GenerationTimeMs int64   `json:"generation_time_ms" example:"3200"`
	TokensPerSecond  float64 `json:"tokens_per_second" example:"40"`
}

// ServerConnectionStatus reports reachability of one backend.
type ServerConnectionStatus struct {
	Connected bool    `json:"connected" example:"true"`
	Version   *string `json:"version"`
	// Model ids listed by the backend, in backend order.
	ModelsLoaded []string `json:"models_loaded"`
	// Operator-facing diagnostic when the backend is unreachable.
	Error *string `json:"error"`
}

// ServerStatus holds one ServerConnectionStatus per known provider.
type ServerStatus struct {
	Ollama   ServerConnectionStatus `json:"ollama"`
	LMStudio ServerConnectionStatus `json:"lmstudio"`
}

// For returns a pointer to the entry for p, or nil for an unknown provider.
func (s *ServerStatus) For(p Provider) *ServerConnectionStatus {
	switch p {
	case ProviderOllama:
		return &s.Ollama
	case ProviderLMStudio:
		return &s.LMStudio
	default:
		return nil
	}
}

// AnyConnected reports whether at least one backend is reachable.
func (s ServerStatus) AnyConnected() bool {
	return s.Ollama.Connected || s.LMStudio.Connected
}

// ModelsResponse wraps the aggregated model listing returned by GET /models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// RecommendationResponse is returned by GET /hardware/recommendation.
type RecommendationResponse struct {
	// example: codellama-13b-instruct.Q4_K_M.gguf
	Model string `json:"model" example:"codellama-13b-instruct.Q4_K_M.gguf"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
