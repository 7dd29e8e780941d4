package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/germanamz/promptly/pkg/settings"
	"github.com/germanamz/promptly/pkg/storage"
	"gopkg.in/yaml.v3"
)

// DefaultPrompt seeds the editor on a fresh install.
const DefaultPrompt = "<|system|>\nYou are a helpful assistant.\n<|im_end|>\n\n<|user|>\n\n<|im_end|>\n"

// Config is the top-level engine configuration.
type Config struct {
	APIBaseURL   string        `yaml:"api_base_url" toml:"api_base_url"`
	Model        string        `yaml:"model" toml:"model"`
	TokenizerURL string        `yaml:"tokenizer_url" toml:"tokenizer_url"`
	APIKey       string        `yaml:"api_key" toml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	ShareBaseURL string        `yaml:"share_base_url" toml:"share_base_url"`
	Prompt       string        `yaml:"prompt" toml:"prompt"`
	Params       ParamsConfig  `yaml:"params" toml:"params"`
	Storage      StorageConfig `yaml:"storage" toml:"storage"`
	Log          LogConfig     `yaml:"log" toml:"log"`
	HTTP         HTTPConfig    `yaml:"http" toml:"http"`
}

// ParamsConfig holds the default request parameters as text, exactly like
// the settings form stores them.
type ParamsConfig struct {
	MaxTokens        string `yaml:"max_tokens" toml:"max_tokens"`
	Temperature      string `yaml:"temperature" toml:"temperature"`
	TopK             string `yaml:"top_k" toml:"top_k"`
	TopP             string `yaml:"top_p" toml:"top_p"`
	FrequencyPenalty string `yaml:"frequency_penalty" toml:"frequency_penalty"`
	PresencePenalty  string `yaml:"presence_penalty" toml:"presence_penalty"`
}

// StorageConfig selects where state is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" toml:"backend"` // sqlite, file or memory.
	Path    string `yaml:"path" toml:"path"`       // Empty: derived from the project directory.
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn or error.
	File  string `yaml:"file" toml:"file"`   // Empty: derived from the project directory.
}

// HTTPConfig controls the HTTP client.
type HTTPConfig struct {
	Timeout string `yaml:"timeout" toml:"timeout"` // Go duration; empty means no timeout.
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:   "https://api.openai.com/v1",
		Model:        "gpt-4o-mini",
		ShareBaseURL: "https://promptly.local/",
		Prompt:       DefaultPrompt,
		Params:       ParamsConfig{Temperature: "0.7"},
		Storage:      StorageConfig{Backend: string(storage.BackendSQLite)},
		Log:          LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML file, or a TOML file when path ends in ".toml",
// over DefaultConfig so omitted keys keep their defaults.
// Environment variables referenced as ${VAR} or $VAR are expanded before
// parsing. This allows API keys to be kept in environment variables (e.g.
// loaded from a .env file) rather than committed in the config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	cfg := DefaultConfig()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return Config{}, fmt.Errorf("engine: parse config: %w", err)
		}

		return cfg, nil
	}

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if err := validateBaseURL("api_base_url", c.APIBaseURL); err != nil {
		return err
	}

	if c.ShareBaseURL != "" {
		if err := validateBaseURL("share_base_url", c.ShareBaseURL); err != nil {
			return err
		}
	}

	if !storage.Backend(c.Storage.Backend).Valid() {
		return fmt.Errorf("engine: config: storage backend %q: %w", c.Storage.Backend, storage.ErrUnknownBackend)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	return nil
}

func validateBaseURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("engine: config: %s is required", field)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("engine: config: %s: %w", field, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("engine: config: %s %q must be an absolute http(s) URL", field, raw)
	}

	return nil
}

// LogLevel parses Log.Level. Empty means info.
func (c Config) LogLevel() (slog.Level, error) {
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("engine: config: log level %q: %w", c.Log.Level, err)
	}

	return lvl, nil
}

// Timeout parses HTTP.Timeout. Empty means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.HTTP.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("engine: config: http timeout: %w", err)
	}

	if d < 0 {
		return 0, errors.New("engine: config: http timeout must not be negative")
	}

	return d, nil
}

// Defaults returns the settings used when nothing has been persisted yet.
func (c Config) Defaults() settings.Settings {
	return settings.Settings{
		APIBaseURL:   c.APIBaseURL,
		Model:        c.Model,
		TokenizerURL: c.TokenizerURL,
		Prompt:       c.Prompt,
		Params: settings.Params{
			MaxTokens:        c.Params.MaxTokens,
			Temperature:      c.Params.Temperature,
			TopK:             c.Params.TopK,
			TopP:             c.Params.TopP,
			FrequencyPenalty: c.Params.FrequencyPenalty,
			PresencePenalty:  c.Params.PresencePenalty,
		},
	}
}

// YAML renders c as a YAML document, suitable for a fresh config file.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("engine: marshal config: %w", err)
	}

	return data, nil
}
