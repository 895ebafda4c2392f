package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/doclink/internal/config"
)

type recordedService struct {
	baseURL      string
	apiKey       string
	extraHeaders map[string]string
}

func (recordedService) Complete(context.Context, CompletionRequest) (*Completion, error) {
	return &Completion{}, nil
}

func registerRecording(t *testing.T, name string) *recordedService {
	t.Helper()
	svc := &recordedService{}
	Register(name, func(baseURL, apiKey string, extraHeaders map[string]string) ReasoningService {
		svc.baseURL = baseURL
		svc.apiKey = apiKey
		svc.extraHeaders = extraHeaders
		return svc
	})
	return svc
}

func TestNewAnthropicProvider(t *testing.T) {
	svc := registerRecording(t, "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "anthropic"

	got, err := New(cfg)
	require.NoError(t, err)
	assert.Same(t, svc, got.(*recordedService))
	assert.Equal(t, "https://api.anthropic.com", svc.baseURL)
	assert.Equal(t, "sk-ant-env", svc.apiKey)
}

func TestNewAnthropicMissingKey(t *testing.T) {
	registerRecording(t, "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "anthropic"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestNewOllamaProvider(t *testing.T) {
	svc := registerRecording(t, "ollama")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "ollama"
	cfg.Provider.Ollama.BaseURL = "http://gpu-box:11434"

	_, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", svc.baseURL)
	assert.Empty(t, svc.apiKey)
}

func TestNewOpenAICompatibleByName(t *testing.T) {
	svc := registerRecording(t, "openai")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-env")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "openrouter"
	cfg.Provider.OpenAI = append(cfg.Provider.OpenAI, config.OpenAICompatibleConfig{
		Name:         "openrouter",
		BaseURL:      "https://openrouter.ai/api/v1",
		APIKeySource: "env",
		ExtraHeaders: map[string]string{"X-Title": "doclink"},
	})

	_, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://openrouter.ai/api/v1", svc.baseURL)
	assert.Equal(t, "sk-or-env", svc.apiKey)
	assert.Equal(t, "doclink", svc.extraHeaders["X-Title"])
}

func TestNewUnknownProvider(t *testing.T) {
	registerRecording(t, "openai")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "nonexistent"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestNewInlineAPIKey(t *testing.T) {
	svc := registerRecording(t, "openai")

	cfg := config.DefaultConfig()
	cfg.Provider.OpenAI[0].APIKeySource = "config"
	cfg.Provider.OpenAI[0].APIKey = "sk-inline"

	_, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sk-inline", svc.apiKey)
}
