package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var zlog = zerolog.Nop()

// SetLogger installs the structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging of generate and chat calls.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = parseLevel(os.Getenv("LLMROUTER_HTTP_LOG"))

// SetRequestLogLevel sets the level used when a request carries no override.
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

// requestLogLevel honours ?log= and X-Log-Level overrides.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// callLog records the start and end of one backend-bound request.
type callLog struct {
	lvl   LogLevel
	op    string
	start time.Time
	base  zerolog.Logger
}

func startCall(r *http.Request, op, provider, model string) *callLog {
	c := &callLog{lvl: requestLogLevel(r), op: op, start: time.Now()}
	ctx := zlog.With().Str("op", op).Str("provider", provider).Str("model", model)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ctx = ctx.Str("request_id", rid)
	}
	c.base = ctx.Logger()
	if c.lvl >= LevelInfo {
		c.base.Info().Msg(op + " start")
	}
	return c
}

func (c *callLog) end(status int, err error) {
	switch {
	case err != nil && c.lvl >= LevelError:
		c.base.Error().Int("status", status).Dur("dur", time.Since(c.start)).Err(err).Msg(c.op + " end")
	case err == nil && c.lvl >= LevelInfo:
		c.base.Info().Int("status", status).Dur("dur", time.Since(c.start)).Msg(c.op + " end")
	}
}
