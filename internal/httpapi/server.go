// Package httpapi serves the router over HTTP with chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmrouter/internal/commands"
	"llmrouter/pkg/types"
)

// Service defines the router operations the HTTP API layer needs.
type Service interface {
	DiscoverServers(ctx context.Context) types.ServerStatus
	ListAllModels(ctx context.Context) []types.ModelInfo
	GetModelInfo(ctx context.Context, provider, modelID string) (types.ModelInfo, error)
	GenerateWithFallback(ctx context.Context, hint string, req types.GenerateRequest) (types.GenerateResponse, error)
	ChatWithFallback(ctx context.Context, hint string, req types.ChatRequest) (types.ChatResponse, error)
	Ready(ctx context.Context) bool
}

// Invoker runs named commands.
type Invoker interface {
	Invoke(ctx context.Context, name string, params json.RawMessage) (any, error)
}

// GenerateBody is the POST /generate payload: a generate request plus the
// provider hint used for routing.
type GenerateBody struct {
	// Provider hint: ollama, lmstudio or an alias. Unknown values use the default backend.
	Provider string `json:"provider" example:"ollama"`
	types.GenerateRequest
}

// ChatBody is the POST /chat payload.
type ChatBody struct {
	Provider string `json:"provider" example:"lmstudio"`
	types.ChatRequest
}

// MuxOption customizes NewMux.
type MuxOption func(*muxConfig)

type muxConfig struct {
	mcp http.Handler
}

// WithMCPHandler mounts h at /mcp.
func WithMCPHandler(h http.Handler) MuxOption { return func(c *muxConfig) { c.mcp = h } }

// NewMux builds the HTTP handler.
func NewMux(svc Service, cmds Invoker, opts ...MuxOption) http.Handler {
	var mc muxConfig
	for _, o := range opts {
		o(&mc)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if len(corsAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Log-Level", "X-Request-Id", "Mcp-Session-Id"},
			ExposedHeaders: []string{"Mcp-Session-Id"},
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc, cmds: cmds}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/servers", h.servers)
		r.Get("/models", h.models)
		r.Get("/models/{provider}/*", h.modelInfo)
		r.Post("/generate", h.generate)
		r.Post("/chat", h.chat)
		r.Get("/hardware", h.hardware)
		r.Get("/hardware/recommendation", h.recommendation)
		r.Post("/invoke/{command}", h.invoke)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready(r.Context()) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no backend reachable"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if mc.mcp != nil {
		r.Handle("/mcp", mc.mcp)
	}
	MountSwagger(r)
	return r
}

type handlers struct {
	svc  Service
	cmds Invoker
}

// servers godoc
// @Summary  Probe every backend
// @Produce  json
// @Success  200 {object} types.ServerStatus
// @Router   /servers [get]
func (h *handlers) servers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.DiscoverServers(r.Context()))
}

// models godoc
// @Summary  List models across all reachable backends
// @Produce  json
// @Success  200 {object} types.ModelsResponse
// @Router   /models [get]
func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, types.ModelsResponse{Models: h.svc.ListAllModels(r.Context())})
}

// modelInfo godoc
// @Summary  Look up one model on one backend
// @Produce  json
// @Param    provider path string true "ollama or lmstudio"
// @Param    id       path string true "model id; may contain slashes"
// @Success  200 {object} types.ModelInfo
// @Failure  400 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /models/{provider}/{id} [get]
func (h *handlers) modelInfo(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	id := chi.URLParam(r, "*")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "model id is required")
		return
	}
	m, err := h.svc.GetModelInfo(r.Context(), provider, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, m)
}

// generate godoc
// @Summary  Generate a completion, falling back to the other backend on failure
// @Accept   json
// @Produce  json
// @Param    body body GenerateBody true "request"
// @Success  200 {object} types.GenerateResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  502 {object} types.ErrorResponse
// @Failure  503 {object} types.ErrorResponse
// @Router   /generate [post]
func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateBody
	if !decodeJSON(w, r, &body) {
		return
	}
	call := startCall(r, "generate", body.Provider, body.Model)
	ctx, cancel := withBase(r.Context(), serverBaseCtx)
	defer cancel()
	resp, err := h.svc.GenerateWithFallback(ctx, body.Provider, body.GenerateRequest)
	if err != nil {
		if cerr := r.Context().Err(); cerr != nil {
			call.end(statusClientClosedRequest, cerr)
			return
		}
		call.end(writeError(w, err), err)
		return
	}
	writeJSON(w, resp)
	call.end(http.StatusOK, nil)
}

// chat godoc
// @Summary  Chat with a model, falling back to the other backend on failure
// @Accept   json
// @Produce  json
// @Param    body body ChatBody true "request"
// @Success  200 {object} types.ChatResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  502 {object} types.ErrorResponse
// @Failure  503 {object} types.ErrorResponse
// @Router   /chat [post]
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var body ChatBody
	if !decodeJSON(w, r, &body) {
		return
	}
	call := startCall(r, "chat", body.Provider, body.Model)
	ctx, cancel := withBase(r.Context(), serverBaseCtx)
	defer cancel()
	resp, err := h.svc.ChatWithFallback(ctx, body.Provider, body.ChatRequest)
	if err != nil {
		if cerr := r.Context().Err(); cerr != nil {
			call.end(statusClientClosedRequest, cerr)
			return
		}
		call.end(writeError(w, err), err)
		return
	}
	writeJSON(w, resp)
	call.end(http.StatusOK, nil)
}

// hardware godoc
// @Summary  Describe the host
// @Produce  json
// @Success  200 {object} types.HardwareInfo
// @Router   /hardware [get]
func (h *handlers) hardware(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, commands.GetHardwareInfo, nil)
}

// recommendation godoc
// @Summary  Recommend a model file for the host
// @Produce  json
// @Success  200 {object} types.RecommendationResponse
// @Router   /hardware/recommendation [get]
func (h *handlers) recommendation(w http.ResponseWriter, r *http.Request) {
	h.runCommand(w, r, commands.GetOptimalModel, nil)
}

// invoke godoc
// @Summary  Run a named command
// @Accept   json
// @Produce  json
// @Param    command path string true "command name"
// @Success  200 {object} any
// @Failure  404 {object} types.ErrorResponse
// @Router   /invoke/{command} [post]
func (h *handlers) invoke(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(raw) > 0 && !isJSON(r) {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	h.runCommand(w, r, chi.URLParam(r, "command"), raw)
}

func (h *handlers) runCommand(w http.ResponseWriter, r *http.Request, name string, params json.RawMessage) {
	ctx, cancel := withBase(r.Context(), serverBaseCtx)
	defer cancel()
	out, err := h.cmds.Invoke(ctx, name, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

// decodeJSON enforces the JSON content type and body cap, then decodes into
// v. It writes the error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !isJSON(r) {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct != "" && strings.HasPrefix(strings.ToLower(ct), "application/json")
}
