package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"codingagent/config"
	"codingagent/mcp"
	"codingagent/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 8192

// AnthropicProvider implements the Provider interface using Anthropic's official API.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - apiKey: Anthropic API key (required)
//   - model: Model to use (default: "claude-sonnet-4-5-20250929")
//
// Returns an error if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey, model string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropicModel,
		baseURL: baseURL,
	}, nil
}

// ChatWithTools implements Provider.ChatWithTools with streaming support.
//
// Text and thinking deltas are forwarded as they arrive. Tool calls are only
// complete once the stream ends, so they are taken from the accumulated
// message.
func (p *AnthropicProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error {
	anthropicMessages, systemPrompt := ConvertToAnthropicMessages(messages)

	finalSystemPrompt := systemPrompt
	if len(tools) > 0 {
		toolInstructionBlock := anthropic.TextBlockParam{
			Text: buildToolInstructions(tools),
		}
		finalSystemPrompt = append([]anthropic.TextBlockParam{toolInstructionBlock}, systemPrompt...)
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: anthropicMaxTokens,
	}
	if len(finalSystemPrompt) > 0 {
		params.System = finalSystemPrompt
	}
	if len(tools) > 0 {
		params.Tools = mcp.ToAnthropicTools(tools)
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	emitter := newStreamEmitter(callback)
	msg := anthropic.Message{}

	for stream.Next() {
		event := stream.Current()

		if err := msg.Accumulate(event); err != nil {
			return fmt.Errorf("error accumulating message: %w", err)
		}

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if err := emitter.content(deltaVariant.Text); err != nil {
					return err
				}
			case anthropic.ThinkingDelta:
				if err := emitter.thought(deltaVariant.Thinking); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Anthropic stream failed: %v", err)
		}
		return fmt.Errorf("Anthropic streaming error: %w", err)
	}

	if err := emitter.finish(); err != nil {
		return err
	}

	return emitter.toolCalls(extractToolCalls(msg.Content))
}

// GetModel implements Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// Ping implements Provider.Ping by making a minimal request, since the API
// has no health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}

// ConvertToAnthropicMessages converts model messages to Anthropic format and
// returns the system prompt separately.
//
// Tool results become tool_result blocks in a user message; consecutive
// results are merged into one message because the API requires every
// tool_use of a turn to be answered in the next user message.
func ConvertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			// the API rejects empty text blocks
			if msg.Content != "" {
				systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
			}

		case model.RoleUser:
			if msg.Content != "" {
				anthropicMsgs = append(anthropicMsgs, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}

		case model.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				args := call.Arguments
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, args, call.Name))
			}
			if len(blocks) > 0 {
				anthropicMsgs = append(anthropicMsgs, anthropic.NewAssistantMessage(blocks...))
			}

		case model.RoleTool:
			block := anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)
			if msg.ToolCallID == "" {
				block = anthropic.NewTextBlock(fmt.Sprintf("[%s result]\n%s", msg.ToolName, msg.Content))
			}

			if n := len(anthropicMsgs); n > 0 && isToolResultMessage(anthropicMsgs[n-1]) {
				anthropicMsgs[n-1].Content = append(anthropicMsgs[n-1].Content, block)
				continue
			}
			anthropicMsgs = append(anthropicMsgs, anthropic.NewUserMessage(block))

		default:
			if msg.Content != "" {
				anthropicMsgs = append(anthropicMsgs, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
	}

	return anthropicMsgs, systemBlocks
}

func isToolResultMessage(msg anthropic.MessageParam) bool {
	if msg.Role != anthropic.MessageParamRoleUser || len(msg.Content) == 0 {
		return false
	}
	for _, block := range msg.Content {
		if block.OfToolResult == nil {
			return false
		}
	}
	return true
}

// extractToolCalls extracts tool calls from Anthropic message content.
func extractToolCalls(content []anthropic.ContentBlockUnion) []model.ToolCall {
	var toolCalls []model.ToolCall

	for _, block := range content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}

		var args map[string]any
		if err := json.Unmarshal(toolUse.Input, &args); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Provider] Skipping tool call %s with unparsable input: %v", toolUse.Name, err)
			}
			continue
		}

		toolCalls = append(toolCalls, model.ToolCall{
			ID:        toolUse.ID,
			Name:      toolUse.Name,
			Arguments: args,
		})
	}

	return toolCalls
}
