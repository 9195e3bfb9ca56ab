// Package provider implements model.Provider for the supported inference
// backends.
//
// codingagent talks to local Ollama servers and to hosted APIs (OpenAI,
// Anthropic, Gemini) through the single model.Provider interface, so the
// orchestrator never sees backend-specific types.
//
// # Responsibilities
//
// Each provider:
//   - converts the model.Message transcript, including assistant tool calls
//     and tool results, into the backend's request format
//   - advertises tools using the mcp.To*Tools converters
//   - turns the backend's stream into model.StreamEvent values: text,
//     think open/close sentinels and tool-call batches
//
// Reasoning output arrives in different shapes: Ollama and Gemini report it
// in separate fields, Anthropic as thinking deltas, and OpenAI-compatible
// servers often inline <think> tags in the content. The shared streamEmitter
// normalizes all of them into sentinel events.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "qwen3:8b",
//	})
//	if err != nil {
//	    // handle error
//	}
//	err = p.ChatWithTools(ctx, messages, schemas, callback)
package provider

// Note: The Provider interface and StreamCallback are defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama    ProviderType = "ollama"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeGemini    ProviderType = "gemini"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For hosted providers (unused for Ollama)

	// ContextSize is sent as num_ctx to Ollama.
	ContextSize int

	// Think asks for reasoning output where the backend supports it.
	Think bool
}
