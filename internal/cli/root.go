// Package cli implements the llmrouter command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmrouter/internal/commands"
	"llmrouter/internal/config"
	"llmrouter/internal/hardware"
	"llmrouter/internal/llm"
	"llmrouter/internal/llm/lmstudio"
	"llmrouter/internal/llm/ollama"
	"llmrouter/internal/router"
)

// app carries state shared by subcommands once flags are parsed.
type app struct {
	version    string
	configPath string
	cfg        config.Config
	log        zerolog.Logger
	stderr     io.Writer
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	root := NewRootCmd(version, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree writing results to stdout and logs to
// stderr.
func NewRootCmd(version string, stdout, stderr io.Writer) *cobra.Command {
	a := &app{version: version, stderr: stderr, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "llmrouter",
		Short:         "Route LLM requests across local Ollama and LM Studio servers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (.yaml/.yml/.json/.toml); defaults to "+config.DefaultPath()+" when present")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("log-format", "", "Log format: auto|json|console")
	pf.String("ollama-url", "", "Ollama base URL (default http://localhost:11434)")
	pf.String("lmstudio-url", "", "LM Studio base URL (default http://localhost:1234)")
	pf.Int("timeout", 0, "Per-request backend timeout in seconds (default 120)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(a.configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		l, err := newLogger(a.stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		a.cfg, a.log = cfg, l
		return nil
	}

	root.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newDetectCmd(a),
		newModelsCmd(a),
		newGenerateCmd(a),
		newChatCmd(a),
		newHardwareCmd(a),
	)
	return root
}

// applyFlags overlays explicitly set persistent flags; they win over file
// and environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("ollama-url") {
		cfg.OllamaURL, _ = flags.GetString("ollama-url")
	}
	if flags.Changed("lmstudio-url") {
		cfg.LMStudioURL, _ = flags.GetString("lmstudio-url")
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeoutSec, _ = flags.GetInt("timeout")
	}
}

func (a *app) transportOptions(baseURL string) llm.TransportOptions {
	return llm.TransportOptions{
		BaseURL:        baseURL,
		RequestTimeout: a.cfg.RequestTimeout(),
		HealthTimeout:  a.cfg.HealthTimeout(),
		Logger:         &a.log,
	}
}

// newRouter builds the adapters and router from config. reg may be nil.
func (a *app) newRouter(reg prometheus.Registerer) (*router.Router, error) {
	return router.New(
		ollama.New(a.transportOptions(a.cfg.OllamaURL)),
		lmstudio.New(a.transportOptions(a.cfg.LMStudioURL)),
		router.WithLogger(a.log),
		router.WithRegisterer(reg),
	)
}

func (a *app) detector() hardware.Detector {
	return hardware.Detector{GPU: a.cfg.GPU, VRAMGB: a.cfg.VRAMGB}
}

func (a *app) newSurface(reg prometheus.Registerer) (*commands.Surface, *router.Router, error) {
	r, err := a.newRouter(reg)
	if err != nil {
		return nil, nil, err
	}
	return commands.New(r, a.detector()), r, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPrompt joins args, or reads stdin when the only arg is "-".
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
	return strings.Join(args, " "), nil
}
