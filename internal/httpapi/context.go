package httpapi

import "context"

// serverBaseCtx is canceled on shutdown so in-flight backend calls stop too.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level context that bounds handler work.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// withBase derives a context from req that is also canceled when base is
// done. The returned cancel func must be called when the handler ends.
func withBase(req, base context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
