package hardware

import "llmrouter/pkg/types"

// Model files recommended by RecommendModel, largest first.
const (
	ModelLarge  = "deepseek-coder-33b-instruct.Q4_K_M.gguf"
	ModelMedium = "codellama-13b-instruct.Q4_K_M.gguf"
	ModelSmall  = "codellama-7b-instruct.Q4_K_M.gguf"
	ModelTiny   = "tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"
)

// RecommendModel picks the largest model the host can run comfortably.
// VRAM decides first; without a capable GPU, system RAM decides.
func RecommendModel(info types.HardwareInfo) string {
	switch {
	case info.VRAMGB >= 16:
		return ModelLarge
	case info.VRAMGB >= 8:
		return ModelMedium
	case info.RAMGB >= 16:
		return ModelSmall
	default:
		return ModelTiny
	}
}
