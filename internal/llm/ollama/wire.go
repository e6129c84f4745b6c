package ollama

import "llmrouter/pkg/types"

// Wire shapes of the Ollama REST API. Only the fields the adapter reads are
// declared; everything else is ignored on decode.

type tagsResponse struct {
	Models []tagModel `json:"models"`
}

type tagModel struct {
	Name       string `json:"name"`
	Size       *int64 `json:"size,omitempty"`
	Digest     string `json:"digest,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type generateResponse struct {
	Model         string  `json:"model"`
	Response      *string `json:"response"`
	Done          bool    `json:"done"`
	EvalCount     int     `json:"eval_count,omitempty"`
	EvalDuration  int64   `json:"eval_duration,omitempty"`
	TotalDuration int64   `json:"total_duration,omitempty"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []types.Message `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  options         `json:"options"`
}

type chatResponse struct {
	Model     string         `json:"model"`
	Message   *types.Message `json:"message"`
	Done      bool           `json:"done"`
	EvalCount int            `json:"eval_count,omitempty"`
}
