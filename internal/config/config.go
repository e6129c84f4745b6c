// Package config loads llmrouter settings. Values are layered: built-in
// defaults, then an optional file (.yaml/.yml, .json or .toml), then
// LLMROUTER_* environment variables. CLI flags are applied last by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "LLMROUTER_"

// Config holds runtime parameters.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" env:"LOG_FORMAT"`

	OllamaURL   string `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url" env:"OLLAMA_URL"`
	LMStudioURL string `json:"lmstudio_url" yaml:"lmstudio_url" toml:"lmstudio_url" env:"LMSTUDIO_URL"`

	// Timeouts in seconds.
	RequestTimeoutSec int `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout" env:"REQUEST_TIMEOUT"`
	HealthTimeoutSec  int `json:"health_timeout" yaml:"health_timeout" toml:"health_timeout" env:"HEALTH_TIMEOUT"`

	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	MCPHTTP      bool     `json:"mcp_http" yaml:"mcp_http" toml:"mcp_http" env:"MCP_HTTP"`

	// GPU details cannot be probed portably; operators may declare them.
	GPU    string `json:"gpu" yaml:"gpu" toml:"gpu" env:"GPU"`
	VRAMGB uint64 `json:"vram_gb" yaml:"vram_gb" toml:"vram_gb" env:"VRAM_GB"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:              "127.0.0.1:8080",
		LogLevel:          "info",
		LogFormat:         "auto",
		OllamaURL:         "http://localhost:11434",
		LMStudioURL:       "http://localhost:1234",
		RequestTimeoutSec: 120,
		HealthTimeoutSec:  3,
		MaxBodyBytes:      1 << 20,
	}
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutSec) * time.Second
}

// Load returns defaults overlaid with the file at path. Keys missing from
// the file keep their default values. A leading ~ in path is expanded.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := expandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays LLMROUTER_* variables onto cfg. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Resolve builds the effective configuration from path (optional; when
// empty, DefaultPath is used if that file exists) and the process
// environment, then validates it.
func Resolve(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if p := DefaultPath(); p != "" && pathExists(p) {
			path = p
		}
	}
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// DefaultPath is $XDG_CONFIG_HOME/llmrouter/config.yaml or the platform
// equivalent. Empty when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "llmrouter", "config.yaml")
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "auto", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log_format must be auto, json or console, got %q", c.LogFormat))
	}
	if err := validateURL(c.OllamaURL); err != nil {
		errs = append(errs, fmt.Errorf("ollama_url: %w", err))
	}
	if err := validateURL(c.LMStudioURL); err != nil {
		errs = append(errs, fmt.Errorf("lmstudio_url: %w", err))
	}
	if c.RequestTimeoutSec <= 0 {
		errs = append(errs, errors.New("request_timeout must be > 0"))
	}
	if c.HealthTimeoutSec <= 0 {
		errs = append(errs, errors.New("health_timeout must be > 0"))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("max_body_bytes must be >= 0"))
	}
	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host: %q", raw)
	}
	return nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
