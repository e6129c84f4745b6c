package ollama

import "strings"

// parseModelName derives the display name and quantization tag from an
// Ollama model id of the form name:tag. "codellama:13b-instruct-q4_0" yields
// "codellama-13b-instruct-q4_0" and "q4_0". Ids without a colon are returned
// unchanged with no quantization.
func parseModelName(id string) (string, *string) {
	name, tag, ok := strings.Cut(id, ":")
	if !ok {
		return id, nil
	}
	display := name + "-" + tag
	for _, seg := range strings.Split(tag, "-") {
		if strings.HasPrefix(seg, "q") || strings.HasPrefix(seg, "Q") {
			q := seg
			return display, &q
		}
	}
	return display, nil
}
