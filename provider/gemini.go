package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"codingagent/config"
	"codingagent/mcp"
	"codingagent/model"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface using the Google Gen AI SDK
// against the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	think  bool
}

// NewGeminiProvider creates a new Gemini provider instance.
//
// Parameters:
//   - apiKey: Gemini API key (required)
//   - model: Model to use (default: "gemini-2.5-flash")
//   - think: include thought summaries in the stream
func NewGeminiProvider(apiKey, model string, think bool) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		think:  think,
	}, nil
}

// ChatWithTools implements Provider.ChatWithTools with streaming support.
func (p *GeminiProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error {
	contents, system := ConvertToGeminiContents(messages)

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(system)}}
	}
	if len(tools) > 0 {
		cfg.Tools = mcp.ToGeminiTools(tools)
	}
	if p.think {
		cfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}

	emitter := newStreamEmitter(callback)

	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, cfg) {
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Provider] Gemini stream failed: %v", err)
			}
			return fmt.Errorf("Gemini streaming error: %w", err)
		}

		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("Gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}

		var calls []model.ToolCall
		for _, part := range resp.Candidates[0].Content.Parts {
			switch {
			case part.FunctionCall != nil:
				calls = append(calls, model.ToolCall{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				})
			case part.Thought:
				if err := emitter.thought(part.Text); err != nil {
					return err
				}
			default:
				if err := emitter.content(part.Text); err != nil {
					return err
				}
			}
		}
		if err := emitter.toolCalls(calls); err != nil {
			return err
		}
	}

	return emitter.finish()
}

// GetModel implements Provider.GetModel.
func (p *GeminiProvider) GetModel() string {
	return p.model
}

// Ping implements Provider.Ping by fetching the configured model.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}

// ConvertToGeminiContents converts model messages to Gemini contents. The
// system prompt is returned separately for SystemInstruction.
//
// Gemini names tool results by function name, so tool messages become
// FunctionResponse parts keyed by ToolName. Consecutive results are merged
// into one user turn.
func ConvertToGeminiContents(messages []model.Message) ([]*genai.Content, string) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			system = msg.Content

		case model.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: call.Arguments,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case model.RoleTool:
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.ToolName,
					Response: toolResponse(msg.Content),
				},
			}
			if n := len(contents); n > 0 && isFunctionResponseContent(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{part}})

		default:
			if msg.Content != "" {
				contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(msg.Content)}})
			}
		}
	}

	return contents, system
}

// toolResponse wraps tool output the way Gemini expects: JSON objects pass
// through, anything else goes under "output".
func toolResponse(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"output": content}
}

func isFunctionResponseContent(c *genai.Content) bool {
	if c.Role != "user" || len(c.Parts) == 0 {
		return false
	}
	for _, part := range c.Parts {
		if part.FunctionResponse == nil {
			return false
		}
	}
	return true
}
