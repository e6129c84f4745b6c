package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"llmrouter/internal/commands"
	"llmrouter/internal/hardware"
	"llmrouter/internal/httpapi"
	"llmrouter/internal/llm"
	"llmrouter/internal/llm/lmstudio"
	"llmrouter/internal/llm/ollama"
	"llmrouter/internal/router"
)

// backend is a scripted LLM server. Setting fail makes every inference
// route answer 500; listing and health keep working.
type backend struct {
	*httptest.Server
	fail  atomic.Bool
	calls atomic.Int32
}

func newOllamaBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"models":[{"name":"codellama:13b-instruct-q4_0","size":7365960935}]}`)
	})
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.fail.Load() {
			http.Error(w, `{"error":"model crashed"}`, http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"model":"codellama:13b-instruct-q4_0","response":"from ollama","done":true,"eval_count":4}`)
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"model":"codellama:13b-instruct-q4_0","message":{"role":"assistant","content":"ollama says hi"},"done":true,"eval_count":3}`)
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

const lmStudioModel = "TheBloke/CodeLlama-7B-Instruct-GGUF/codellama-7b-instruct.Q4_K_M.gguf"

func newLMStudioBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"object":"list","data":[{"id":"`+lmStudioModel+`","object":"model"}]}`)
	})
	mux.HandleFunc("POST /v1/completions", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.fail.Load() {
			http.Error(w, "no model loaded", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"model":"`+lmStudioModel+`","choices":[{"text":"from lmstudio","index":0}],"usage":{"completion_tokens":5}}`)
	})
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.fail.Load() {
			http.Error(w, "no model loaded", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"model":"`+lmStudioModel+`","choices":[{"index":0,"message":{"role":"assistant","content":"lmstudio says hi"}}],"usage":{"completion_tokens":2}}`)
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// newStack wires real adapters, router, command surface and HTTP mux
// against the given backend URLs.
func newStack(t *testing.T, ollamaURL, lmstudioURL string) (*httptest.Server, *router.MemoryPublisher) {
	t.Helper()
	opts := func(u string) llm.TransportOptions {
		return llm.TransportOptions{BaseURL: u, RequestTimeout: 5 * time.Second, HealthTimeout: time.Second}
	}
	events := router.NewMemoryPublisher()
	r, err := router.New(ollama.New(opts(ollamaURL)), lmstudio.New(opts(lmstudioURL)), router.WithPublisher(events))
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	hw := hardware.Detector{GPU: "Test GPU", VRAMGB: 8}
	srv := httptest.NewServer(httpapi.NewMux(r, commands.New(r, hw)))
	t.Cleanup(srv.Close)
	return srv, events
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func doGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	return do(t, req)
}

func doPost(t *testing.T, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode: %v body=%s", err, body)
	}
	return v
}
