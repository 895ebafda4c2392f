package provider

import (
	"fmt"
	"strings"

	"github.com/julianshen/doclink/internal/config"
)

const anthropicBaseURL = "https://api.anthropic.com"

// Constructor creates a ReasoningService for a vendor endpoint.
type Constructor func(baseURL, apiKey string, extraHeaders map[string]string) ReasoningService

// registry holds registered provider constructors.
var registry = map[string]Constructor{}

// Register registers a provider constructor by name.
func Register(name string, constructor Constructor) {
	registry[name] = constructor
}

// New creates a ReasoningService based on the given configuration.
// "anthropic" and "ollama" are addressed directly; any other name is
// looked up among the OpenAI-compatible endpoint configurations.
func New(cfg *config.Config) (ReasoningService, error) {
	switch cfg.Provider.Default {
	case "anthropic":
		return newAnthropic(cfg)
	case "ollama":
		return newOllama(cfg)
	default:
		return newOpenAICompatible(cfg)
	}
}

func newAnthropic(cfg *config.Config) (ReasoningService, error) {
	constructor, ok := registry["anthropic"]
	if !ok {
		return nil, fmt.Errorf("anthropic provider not registered")
	}

	apiKey, err := config.ResolveAPIKey(
		cfg.Provider.Anthropic.APIKeySource,
		cfg.Provider.Anthropic.APIKey,
		"ANTHROPIC_API_KEY",
	)
	if err != nil {
		return nil, fmt.Errorf("resolving Anthropic API key: %w", err)
	}

	return constructor(anthropicBaseURL, apiKey, nil), nil
}

func newOllama(cfg *config.Config) (ReasoningService, error) {
	constructor, ok := registry["ollama"]
	if !ok {
		return nil, fmt.Errorf("ollama provider not registered")
	}
	return constructor(cfg.Provider.Ollama.BaseURL, "", nil), nil
}

func newOpenAICompatible(cfg *config.Config) (ReasoningService, error) {
	name := cfg.Provider.Default

	constructor, ok := registry["openai"]
	if !ok {
		return nil, fmt.Errorf("openai provider not registered")
	}

	for _, oc := range cfg.Provider.OpenAI {
		if oc.Name == name {
			envVar := strings.ToUpper(name) + "_API_KEY"
			apiKey, err := config.ResolveAPIKey(oc.APIKeySource, oc.APIKey, envVar)
			if err != nil {
				return nil, fmt.Errorf("resolving %s API key: %w", name, err)
			}
			return constructor(oc.BaseURL, apiKey, oc.ExtraHeaders), nil
		}
	}

	return nil, fmt.Errorf("unknown provider: %q", name)
}
