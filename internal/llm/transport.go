package llm

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"llmrouter/pkg/types"
)

const (
	// DefaultRequestTimeout bounds every backend call except health probes.
	DefaultRequestTimeout = 120 * time.Second
	// DefaultHealthTimeout bounds health probes, which run often and
	// speculatively.
	DefaultHealthTimeout = 3 * time.Second

	defaultConnectTimeout = 5 * time.Second
	maxErrorBodyBytes     = 4096
)

// TransportOptions configures a Transport. Zero values select defaults.
type TransportOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	ConnectTimeout time.Duration
	Logger         *zerolog.Logger
}

// Transport is the HTTP plumbing shared by adapters: one pooled resty client
// per backend, error classification into the llm taxonomy, and request
// logging. It is safe for concurrent use.
type Transport struct {
	provider      types.Provider
	baseURL       string
	healthTimeout time.Duration
	client        *resty.Client
	log           zerolog.Logger
}

// NewTransport builds a Transport for provider p.
func NewTransport(p types.Provider, opts TransportOptions) *Transport {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = DefaultHealthTimeout
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("provider", string(p)).Logger()

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	client := resty.New().
		SetTransport(tr).
		SetBaseURL(baseURL).
		SetTimeout(opts.RequestTimeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			log.Debug().
				Str("method", resp.Request.Method).
				Str("url", resp.Request.URL).
				Int("status", resp.StatusCode()).
				Dur("dur", resp.Time()).
				Msg("backend request")
			return nil
		})

	return &Transport{
		provider:      p,
		baseURL:       baseURL,
		healthTimeout: opts.HealthTimeout,
		client:        client,
		log:           log,
	}
}

// BaseURL returns the normalized backend base URL.
func (t *Transport) BaseURL() string { return t.baseURL }

// GetJSON issues GET path and decodes a 2xx body into out.
func (t *Transport) GetJSON(ctx context.Context, op, path string, out any) error {
	resp, _, err := t.execute(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return t.decode(op, resp, out)
}

// PostJSON sends body as JSON to path and decodes a 2xx body into out. It
// returns the round-trip time in milliseconds, measured from just before the
// request is issued until the full response body has been read.
func (t *Transport) PostJSON(ctx context.Context, op, path string, body, out any) (int64, error) {
	resp, elapsed, err := t.execute(ctx, op, http.MethodPost, path, body)
	if err != nil {
		return elapsed, err
	}
	return elapsed, t.decode(op, resp, out)
}

// Probe reports whether GET path answers with a 2xx status within the health
// timeout. Every failure yields false.
func (t *Transport) Probe(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, t.healthTimeout)
	defer cancel()
	resp, err := t.client.R().SetContext(ctx).Get(path)
	if err != nil {
		t.log.Debug().Err(err).Msg("health probe failed")
		return false
	}
	return resp.IsSuccess()
}

func (t *Transport) execute(ctx context.Context, op, method, path string, body any) (*resty.Response, int64, error) {
	req := t.client.R().SetContext(ctx)
	if body != nil {
		// An unencodable body is the caller's fault, not the backend's.
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, &InvalidRequestError{Field: "body", Reason: err.Error()}
		}
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	sw := StartStopwatch()
	resp, err := req.Execute(method, path)
	elapsed := sw.ElapsedMs()
	if err != nil {
		return nil, elapsed, &TransportError{Provider: t.provider, Op: op, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, elapsed, &UpstreamError{
			Provider: t.provider,
			Op:       op,
			Status:   resp.StatusCode(),
			Body:     truncate(strings.TrimSpace(resp.String()), maxErrorBodyBytes),
		}
	}
	return resp, elapsed, nil
}

func (t *Transport) decode(op string, resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &ProtocolError{Provider: t.provider, Op: op, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// restyLogger routes resty's internal diagnostics into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
