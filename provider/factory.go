package provider

import (
	"fmt"

	"codingagent/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory function for creating any provider type.
// It dispatches to the provider constructor named by Config.Type.
//
// Returns an error if:
//   - The provider type is unknown
//   - The provider-specific constructor fails (e.g., invalid URL, missing API key)
//
// Example (Ollama):
//
//	cfg := provider.Config{
//	    Type:        provider.ProviderTypeOllama,
//	    BaseURL:     "http://localhost:11434",
//	    Model:       "qwen3:8b",
//	    ContextSize: 32000,
//	}
//	p, err := provider.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Example (Anthropic):
//
//	cfg := provider.Config{
//	    Type:   provider.ProviderTypeAnthropic,
//	    Model:  "claude-sonnet-4-5-20250929",
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	}
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.ContextSize, cfg.Think)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.Think)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider ID to a factory ProviderType.
//
// Mappings:
//   - "ollama" → ProviderTypeOllama
//   - "openai", "openrouter", "vllm", "llamacpp" → ProviderTypeOpenAI (OpenAI-compatible)
//   - "anthropic" → ProviderTypeAnthropic
//   - "gemini", "google" → ProviderTypeGemini
//
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "ollama":
		return ProviderTypeOllama
	case "openai", "openrouter", "vllm", "llamacpp":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	case "gemini", "google":
		return ProviderTypeGemini
	default:
		// Fallback: pass ID as-is (factory will return error)
		return ProviderType(id)
	}
}
