package provider

import (
	"context"
	"fmt"

	"codingagent/config"
	"codingagent/mcp"
	"codingagent/model"
	"codingagent/ollama"

	"github.com/ollama/ollama/api"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// Ollama reports reasoning in Message.Thinking when think is enabled; older
// templates inline <think> tags in the content instead. Both reach the
// orchestrator as think sentinels.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. If empty, defaults to "http://localhost:11434".
//   - model: The model name to use. If empty, defaults to "qwen3:8b".
//   - contextSize: num_ctx for every request, 0 for the server default.
//   - think: whether to request reasoning output.
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string, contextSize int, think bool) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model, ollama.Options{
		ContextSize: contextSize,
		Think:       think,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// ChatWithTools implements Provider.ChatWithTools with type conversions.
//
// This method handles all necessary type conversions:
//   - Converts model.Message to api.Message
//   - Converts mcp.ToolSchema to api.Tool (all parameters advertised as strings)
//   - Converts api.ToolCall to model.ToolCall
//
// Each streamed fragment is forwarded before the next one is read.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error {
	ollamaMessages := ConvertToOllamaMessages(messages)

	var ollamaTools []api.Tool
	if len(tools) > 0 {
		ollamaTools = mcp.ToOllamaTools(tools)
	}

	emitter := newStreamEmitter(callback)
	err := p.client.ChatWithTools(ctx, ollamaMessages, ollamaTools, func(fragment api.Message) error {
		if err := emitter.thought(fragment.Thinking); err != nil {
			return err
		}
		if err := emitter.content(fragment.Content); err != nil {
			return err
		}
		return emitter.toolCalls(ConvertToProviderToolCalls(fragment.ToolCalls))
	})
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Ollama chat failed: %v", err)
		}
		return fmt.Errorf("Ollama chat error: %w", err)
	}

	return emitter.finish()
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// Ping implements Provider.Ping (direct passthrough).
//
// Checks if the Ollama server is reachable by listing models.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// HasModel reports whether the configured model has been pulled.
func (p *OllamaProvider) HasModel(ctx context.Context) (bool, error) {
	return p.client.HasModel(ctx)
}

// SupportsToolCalling reports whether the model family is known to handle
// Ollama's tool calling API.
func (p *OllamaProvider) SupportsToolCalling() bool {
	return ollama.ModelSupportsToolCalling(p.client.GetModel())
}
