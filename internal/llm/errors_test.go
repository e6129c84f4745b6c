package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"llmrouter/pkg/types"
)

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	te := &TransportError{Provider: types.ProviderOllama, Op: "generate", Err: base}
	wrapped := fmt.Errorf("router: %w", te)
	if !IsTransport(wrapped) || IsUpstream(wrapped) {
		t.Fatalf("classification broken for %v", wrapped)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("TransportError must unwrap to its cause")
	}
	if !strings.Contains(te.Error(), "Ollama generate") {
		t.Fatalf("message=%q", te.Error())
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  interface{ StatusCode() int }
		want int
	}{
		{&TransportError{}, http.StatusServiceUnavailable},
		{&UpstreamError{}, http.StatusBadGateway},
		{&ProtocolError{}, http.StatusBadGateway},
		{&NotFoundError{}, http.StatusNotFound},
		{&InvalidRequestError{}, http.StatusBadRequest},
	}
	for _, c := range cases {
		if got := c.err.StatusCode(); got != c.want {
			t.Fatalf("%T.StatusCode()=%d want %d", c.err, got, c.want)
		}
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	e := &UpstreamError{Provider: types.ProviderLMStudio, Op: "chat", Status: 500}
	if e.Error() != "LM Studio chat failed: HTTP 500" {
		t.Fatalf("message=%q", e.Error())
	}
	e.Body = "boom"
	if !strings.HasSuffix(e.Error(), ": boom") {
		t.Fatalf("message=%q", e.Error())
	}
}
