package lmstudio

import "strings"

// parseModelName derives the display name and quantization tag from an
// LM Studio model id such as
// "TheBloke/CodeLlama-13B-Instruct-GGUF/codellama-13b-instruct.Q4_K_M.gguf",
// which yields "codellama-13b-instruct" and "Q4_K_M".
//
// Only dot segments after the base name are considered for the quantization
// tag, so names like "qwen2.5-coder" are not mistaken for one.
func parseModelName(id string) (string, *string) {
	file := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		file = id[i+1:]
	}
	if file == "" {
		return id, nil
	}

	var quant *string
	segs := strings.Split(file, ".")
	for _, seg := range segs[1:] {
		if strings.HasPrefix(seg, "q") || strings.HasPrefix(seg, "Q") {
			q := seg
			quant = &q
			break
		}
	}

	display := file
	for _, ext := range []string{".gguf", ".bin"} {
		if strings.HasSuffix(display, ext) {
			display = strings.TrimSuffix(display, ext)
			break
		}
	}
	if quant != nil {
		display = strings.TrimSuffix(display, "."+*quant)
	}
	return display, quant
}
