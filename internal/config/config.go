// Package config loads the doclink TOML configuration, merging a config
// file over built-in defaults, and resolves API keys from the
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level application configuration.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Linking  LinkingConfig  `toml:"linking"`
	Source   SourceConfig   `toml:"source"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// ProviderConfig selects and configures the Reasoning Service vendor.
type ProviderConfig struct {
	Default   string                   `toml:"default"`
	Model     string                   `toml:"model"`
	Anthropic AnthropicProviderConfig  `toml:"anthropic"`
	Ollama    OllamaProviderConfig     `toml:"ollama"`
	OpenAI    []OpenAICompatibleConfig `toml:"openai_compatible"`
}

// AnthropicProviderConfig holds Anthropic-specific provider settings.
type AnthropicProviderConfig struct {
	APIKeySource string `toml:"api_key_source"`
	APIKey       string `toml:"api_key"`
}

// OllamaProviderConfig holds Ollama-specific provider settings.
type OllamaProviderConfig struct {
	BaseURL string `toml:"base_url"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible endpoint.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name"`
	BaseURL      string            `toml:"base_url"`
	APIKeySource string            `toml:"api_key_source"`
	APIKey       string            `toml:"api_key"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
}

// LinkingConfig holds the Semantic Linker settings. BatchSize bounds the
// number of documents processed in flight.
type LinkingConfig struct {
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
	BatchSize          int     `toml:"batch_size"`
	RetryAttempts      int     `toml:"retry_attempts"`
	CallTimeoutSeconds int     `toml:"call_timeout_seconds"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
}

// SourceConfig controls documentation file discovery.
type SourceConfig struct {
	Extensions []string `toml:"extensions"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Default: "openai",
			Model:   "gpt-4",
			Anthropic: AnthropicProviderConfig{
				APIKeySource: "env",
			},
			OpenAI: []OpenAICompatibleConfig{
				{
					Name:         "openai",
					BaseURL:      "https://api.openai.com/v1",
					APIKeySource: "env",
				},
			},
		},
		Linking: LinkingConfig{
			Temperature:        0.0,
			MaxTokens:          4000,
			BatchSize:          5,
			RetryAttempts:      3,
			CallTimeoutSeconds: 120,
		},
		Source: SourceConfig{
			Extensions: []string{
				".md", ".markdown", ".mdx", ".rst", ".txt",
				".adoc", ".asciidoc", ".html", ".htm",
			},
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 24,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path and merges it over the defaults. A
// missing file yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
