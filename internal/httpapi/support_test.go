package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("?log=1 override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	SetRequestLogLevel("info")
	t.Cleanup(func() { SetRequestLogLevel("") })
	if got := requestLogLevel(httptest.NewRequest("GET", "/x", nil)); got != LevelInfo {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestCallLogWritesStartAndEnd(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	r := httptest.NewRequest("POST", "/generate?log=info", nil)
	c := startCall(r, "generate", "ollama", "llama3")
	c.end(http.StatusOK, nil)
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`"message":"generate start"`)) || !bytes.Contains([]byte(out), []byte(`"message":"generate end"`)) {
		t.Fatalf("log output=%s", out)
	}
	if !bytes.Contains([]byte(out), []byte(`"model":"llama3"`)) {
		t.Fatalf("missing model field: %s", out)
	}
}

func TestCallLogEndsWhenClientGoesAway(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := NewMux(&fakeService{genErr: context.Canceled}, &fakeInvoker{})
	for _, path := range []string{"/generate", "/chat"} {
		buf.Reset()
		body := `{"model":"m","prompt":"p","messages":[{"role":"user","content":"x"}]}`
		r := httptest.NewRequest("POST", path+"?log=info", strings.NewReader(body)).WithContext(ctx)
		r.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(httptest.NewRecorder(), r)

		out := buf.String()
		if !strings.Contains(out, " start\"") || !strings.Contains(out, " end\"") {
			t.Fatalf("%s: expected start and end records, got %s", path, out)
		}
		if !strings.Contains(out, `"status":499`) {
			t.Fatalf("%s: expected status 499, got %s", path, out)
		}
	}
}

func TestWithBaseCancelsOnEitherParent(t *testing.T) {
	base, cancelBase := context.WithCancel(context.Background())
	ctx, cancel := withBase(context.Background(), base)
	defer cancel()
	cancelBase()
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("derived context did not cancel when base canceled")
	}

	req, cancelReq := context.WithCancel(context.Background())
	ctx2, cancel2 := withBase(req, context.Background())
	defer cancel2()
	cancelReq()
	select {
	case <-ctx2.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("derived context did not cancel when request canceled")
	}
}

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	SetBaseContext(ctx)
	// nolint:staticcheck // SA1012: nil is the documented reset value
	SetBaseContext(nil)
	if serverBaseCtx != context.Background() {
		t.Fatalf("base context not reset")
	}
}

func TestSetMaxBodyBytes(t *testing.T) {
	SetMaxBodyBytes(10)
	if maxBodyBytes != 10 {
		t.Fatalf("maxBodyBytes=%d", maxBodyBytes)
	}
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("reset failed: %d", maxBodyBytes)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/models/{provider}/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/models/ollama/llama3:8b", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := mrr.Body.Bytes()
	if !bytes.Contains(body, []byte("llmrouter_http_requests_total")) || !bytes.Contains(body, []byte("/models/{provider}/*")) {
		t.Fatalf("expected route pattern label in metrics")
	}
	if bytes.Contains(body, []byte("llama3:8b")) {
		t.Fatalf("raw path leaked into metric labels")
	}
}

func TestMountSwagger_NoOp(t *testing.T) {
	MountSwagger(chi.NewRouter())
}
