// Package router chooses a backend for each request and falls back to the
// alternate backend exactly once when the chosen one fails. It also fans out
// discovery and model listing across all backends.
//
// A Router holds no mutable state after construction and is safe for
// concurrent use without locking.
package router

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

const tracerName = "llmrouter/internal/router"

// Diagnostics reported by DiscoverServers for unreachable backends.
var unreachableDiagnostics = map[types.Provider]string{
	types.ProviderOllama:   "Ollama server not running. Start with: ollama serve",
	types.ProviderLMStudio: "LM Studio server not running. Start LM Studio and enable server mode.",
}

// Router dispatches requests to one client per provider.
type Router struct {
	ollama   llm.Client
	lmstudio llm.Client

	log     zerolog.Logger
	events  EventPublisher
	metrics *metrics
	tracer  trace.Tracer
}

type config struct {
	log    zerolog.Logger
	reg    prometheus.Registerer
	events EventPublisher
	tp     trace.TracerProvider
}

// Option customizes a Router.
type Option func(*config)

// WithLogger sets the logger used for fallback warnings and swallowed
// aggregate failures.
func WithLogger(l zerolog.Logger) Option { return func(c *config) { c.log = l } }

// WithRegisterer registers router metrics on reg. Without it metrics are
// collected but not exported.
func WithRegisterer(reg prometheus.Registerer) Option { return func(c *config) { c.reg = reg } }

// WithPublisher installs an event sink.
func WithPublisher(p EventPublisher) Option { return func(c *config) { c.events = p } }

// WithTracerProvider overrides the global otel tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option { return func(c *config) { c.tp = tp } }

// New builds a Router over an Ollama and an LM Studio client.
func New(ollama, lmstudio llm.Client, opts ...Option) (*Router, error) {
	if ollama == nil || lmstudio == nil {
		return nil, fmt.Errorf("router: both clients are required")
	}
	if ollama.Provider() != types.ProviderOllama {
		return nil, fmt.Errorf("router: ollama slot given a %s client", ollama.Provider())
	}
	if lmstudio.Provider() != types.ProviderLMStudio {
		return nil, fmt.Errorf("router: lmstudio slot given a %s client", lmstudio.Provider())
	}
	cfg := config{log: zerolog.Nop(), events: noopPublisher{}}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.events == nil {
		cfg.events = noopPublisher{}
	}
	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}
	m, err := newMetrics(cfg.reg)
	if err != nil {
		return nil, fmt.Errorf("router: register metrics: %w", err)
	}
	return &Router{
		ollama:   ollama,
		lmstudio: lmstudio,
		log:      cfg.log.With().Str("component", "router").Logger(),
		events:   cfg.events,
		metrics:  m,
		tracer:   cfg.tp.Tracer(tracerName),
	}, nil
}

// Providers lists the known providers, default primary first.
func (r *Router) Providers() []types.Provider {
	out := make([]types.Provider, len(types.Providers))
	copy(out, types.Providers)
	return out
}

// Client returns the client for p, or nil for an unknown provider.
func (r *Router) Client(p types.Provider) llm.Client {
	switch p {
	case types.ProviderOllama:
		return r.ollama
	case types.ProviderLMStudio:
		return r.lmstudio
	default:
		return nil
	}
}

// Resolve maps a provider hint to the primary and fallback providers.
// Unrecognized or empty hints resolve to the default primary with
// recognized=false.
func (r *Router) Resolve(hint string) (primary, secondary types.Provider, recognized bool) {
	p, ok := llm.LookupProvider(hint)
	if !ok {
		p = llm.DefaultProvider()
	}
	return p, llm.Alternate(p), ok
}

func (r *Router) resolve(op, hint string) (types.Provider, types.Provider) {
	primary, secondary, ok := r.Resolve(hint)
	if !ok {
		r.log.Warn().
			Str("op", op).
			Str("hint", hint).
			Str("provider", string(primary)).
			Msg("unrecognized provider hint; using default")
	}
	return primary, secondary
}

// GenerateWithFallback runs req on the provider named by hint and, if that
// fails, once on the alternate provider. Only the alternate's outcome is
// returned after a fallback; the primary's error is logged.
func (r *Router) GenerateWithFallback(ctx context.Context, hint string, req types.GenerateRequest) (types.GenerateResponse, error) {
	if err := llm.ValidateGenerate(req); err != nil {
		return types.GenerateResponse{}, err
	}
	resp, err := withFallback(ctx, r, "generate", hint, func(ctx context.Context, c llm.Client) (types.GenerateResponse, error) {
		return c.Generate(ctx, req)
	})
	if err == nil {
		r.metrics.tps.Observe(resp.TokensPerSecond)
	}
	return resp, err
}

// ChatWithFallback is GenerateWithFallback for chat requests.
func (r *Router) ChatWithFallback(ctx context.Context, hint string, req types.ChatRequest) (types.ChatResponse, error) {
	if err := llm.ValidateChat(req); err != nil {
		return types.ChatResponse{}, err
	}
	resp, err := withFallback(ctx, r, "chat", hint, func(ctx context.Context, c llm.Client) (types.ChatResponse, error) {
		return c.Chat(ctx, req)
	})
	if err == nil {
		r.metrics.tps.Observe(resp.TokensPerSecond)
	}
	return resp, err
}

func withFallback[T any](ctx context.Context, r *Router, op, hint string, call func(context.Context, llm.Client) (T, error)) (T, error) {
	primary, secondary := r.resolve(op, hint)
	ctx, span := r.tracer.Start(ctx, "router."+op, trace.WithAttributes(
		attribute.String("llm.hint", hint),
		attribute.String("llm.primary", string(primary)),
	))
	defer span.End()

	out, err := call(ctx, r.Client(primary))
	r.metrics.observe(op, primary, err)
	if err == nil {
		span.SetAttributes(attribute.String("llm.provider", string(primary)))
		return out, nil
	}
	if llm.IsInvalidRequest(err) {
		// The other backend would reject the same request.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, err
	}

	r.log.Warn().
		Err(err).
		Str("op", op).
		Str("from", string(primary)).
		Str("to", string(secondary)).
		Msg("primary backend failed; falling back")
	r.metrics.fallback(op, primary, secondary)
	r.events.Publish(Event{
		Name:     EventFallback,
		Provider: primary,
		Fields:   map[string]any{"op": op, "to": secondary, "error": err.Error()},
	})
	span.AddEvent("fallback", trace.WithAttributes(attribute.String("llm.primary_error", err.Error())))

	out, err = call(ctx, r.Client(secondary))
	r.metrics.observe(op, secondary, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, err
	}
	span.SetAttributes(attribute.String("llm.provider", string(secondary)))
	return out, nil
}

// DiscoverServers health-checks every backend concurrently and, for each
// reachable one, lists its model ids. Unreachable backends are reported
// disconnected with an operator-facing hint. It never fails.
func (r *Router) DiscoverServers(ctx context.Context) types.ServerStatus {
	ctx, span := r.tracer.Start(ctx, "router.discover")
	defer span.End()

	results := make([]types.ServerConnectionStatus, len(types.Providers))
	var g errgroup.Group
	for i, p := range types.Providers {
		g.Go(func() error {
			results[i] = r.probe(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	var status types.ServerStatus
	for i, p := range types.Providers {
		*status.For(p) = results[i]
		span.SetAttributes(attribute.Bool("llm."+string(p)+".connected", results[i].Connected))
	}
	return status
}

func (r *Router) probe(ctx context.Context, p types.Provider) types.ServerConnectionStatus {
	c := r.Client(p)
	st := types.ServerConnectionStatus{ModelsLoaded: []string{}}
	if !c.HealthCheck(ctx) {
		msg := unreachableDiagnostics[p]
		st.Error = &msg
		r.metrics.setUp(p, false)
		r.events.Publish(Event{Name: EventBackendUnreachable, Provider: p})
		return st
	}
	st.Connected = true
	r.metrics.setUp(p, true)
	models, err := c.ListModels(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("provider", string(p)).Msg("backend healthy but listing failed")
		return st
	}
	for _, m := range models {
		st.ModelsLoaded = append(st.ModelsLoaded, m.ID)
	}
	return st
}

// ListAllModels queries every backend concurrently and concatenates the
// results in provider order. Failing backends contribute nothing; their
// errors are logged and dropped.
func (r *Router) ListAllModels(ctx context.Context) []types.ModelInfo {
	ctx, span := r.tracer.Start(ctx, "router.list_models")
	defer span.End()

	results := make([][]types.ModelInfo, len(types.Providers))
	var g errgroup.Group
	for i, p := range types.Providers {
		g.Go(func() error {
			models, err := r.Client(p).ListModels(ctx)
			r.metrics.observe("list_models", p, err)
			if err != nil {
				r.log.Warn().Err(err).Str("provider", string(p)).Msg("listing models failed")
				return nil
			}
			results[i] = models
			return nil
		})
	}
	_ = g.Wait()

	all := []types.ModelInfo{}
	for _, models := range results {
		all = append(all, models...)
	}
	span.SetAttributes(attribute.Int("llm.models", len(all)))
	return all
}

// GetModelInfo looks modelID up on the provider named by hint. Unlike
// generation it does not fall back: a model id belongs to one backend.
func (r *Router) GetModelInfo(ctx context.Context, hint, modelID string) (types.ModelInfo, error) {
	p, err := llm.ParseProvider(hint)
	if err != nil {
		return types.ModelInfo{}, err
	}
	return r.Client(p).GetModelInfo(ctx, modelID)
}

// Ready reports whether at least one backend passes its health check.
func (r *Router) Ready(ctx context.Context) bool {
	results := make([]bool, len(types.Providers))
	var g errgroup.Group
	for i, p := range types.Providers {
		g.Go(func() error {
			results[i] = r.Client(p).HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}
