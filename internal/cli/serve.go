package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"llmrouter/internal/httpapi"
	"llmrouter/internal/mcpserver"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API",
		Example: "  llmrouter serve --addr :8080 --mcp",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr, _ = cmd.Flags().GetString("addr")
			}
			if cmd.Flags().Changed("mcp") {
				a.cfg.MCPHTTP, _ = cmd.Flags().GetBool("mcp")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (default 127.0.0.1:8080)")
	cmd.Flags().Bool("mcp", false, "Also expose MCP tools over streamable HTTP at /mcp")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	surface, r, err := a.newSurface(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	httpapi.SetLogger(a.log)
	httpapi.SetMaxBodyBytes(a.cfg.MaxBodyBytes)
	httpapi.SetCORSOrigins(a.cfg.CORSOrigins)
	httpapi.SetBaseContext(ctx)
	var opts []httpapi.MuxOption
	if a.cfg.MCPHTTP {
		opts = append(opts, httpapi.WithMCPHandler(mcpserver.HTTPHandler(mcpserver.New(surface, a.version))))
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           httpapi.NewMux(r, surface, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("addr", a.cfg.Addr).
			Str("ollama", a.cfg.OllamaURL).
			Str("lmstudio", a.cfg.LMStudioURL).
			Bool("mcp", a.cfg.MCPHTTP).
			Msg("llmrouter listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown")
		return err
	}
	return <-errCh
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdio",
		Long:  "Serve the command surface as Model Context Protocol tools on stdin/stdout. Logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			surface, _, err := a.newSurface(nil)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return mcpserver.ServeStdio(ctx, mcpserver.New(surface, a.version))
		},
	}
}
