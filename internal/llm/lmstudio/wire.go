package lmstudio

import "llmrouter/pkg/types"

// OpenAI-compatible shapes served by LM Studio under /v1.

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created *int64 `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
	Stream      bool    `json:"stream"`
}

type chatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	TopP        float64         `json:"top_p"`
	Stream      bool            `json:"stream"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choices is a pointer so that an absent key (an error body served with a
// 2xx status) can be told apart from an empty list.
type completionResponse struct {
	ID      string              `json:"id"`
	Model   string              `json:"model"`
	Choices *[]completionChoice `json:"choices"`
	Usage   *usage              `json:"usage,omitempty"`
}

type completionChoice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionResponse struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices *[]chatChoice `json:"choices"`
	Usage   *usage        `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int           `json:"index"`
	Message      types.Message `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

func (u *usage) completionTokens() int {
	if u == nil {
		return 0
	}
	return u.CompletionTokens
}
