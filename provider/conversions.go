package provider

import (
	"encoding/json"
	"regexp"
	"strings"

	"codingagent/mcp"
	"codingagent/model"

	"github.com/ollama/ollama/api"
)

// ConvertToOllamaMessages converts model.Message to Ollama api.Message.
//
// Assistant tool calls are carried over so the model sees what it asked for,
// and tool results keep their tool name. Timestamps and call ids have no
// Ollama equivalent and are dropped.
//
// Example:
//
//	msgs := []model.Message{
//	    {Role: "user", Content: "List /tmp"},
//	    {Role: "assistant", ToolCalls: []model.ToolCall{{Name: "ls", Arguments: map[string]any{"path": "/tmp"}}}},
//	    {Role: "tool", ToolName: "ls", Content: `["/tmp/a"]`},
//	}
//	ollamaMessages := ConvertToOllamaMessages(msgs)
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			ToolName:  msg.ToolName,
			ToolCalls: ConvertFromProviderToolCalls(msg.ToolCalls),
		}
	}
	return result
}

// ConvertToProviderToolCalls converts Ollama api.ToolCall to provider-agnostic model.ToolCall.
//
// Returns nil if the input is nil or empty, maintaining the same nil semantics as
// the Ollama API.
//
// Example:
//
//	ollamaCalls := []api.ToolCall{
//	    {Function: api.ToolCallFunction{
//	        Name:      "read_file",
//	        Arguments: map[string]any{"file_path": "/etc/hosts"},
//	    }},
//	}
//	calls := ConvertToProviderToolCalls(ollamaCalls)
//	// calls[0].Name == "read_file"
func ConvertToProviderToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}

// ConvertFromProviderToolCalls converts model.ToolCall to Ollama api.ToolCall.
//
// Returns nil if the input is nil or empty.
func ConvertFromProviderToolCalls(providerCalls []model.ToolCall) []api.ToolCall {
	if len(providerCalls) == 0 {
		return nil
	}

	result := make([]api.ToolCall, len(providerCalls))
	for i, call := range providerCalls {
		result[i] = api.ToolCall{
			Function: api.ToolCallFunction{
				Index:     i,
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}
	}
	return result
}

// ParseToolArguments parses a JSON arguments string into a map.
// Used by the OpenAI and Anthropic providers, whose SDKs deliver raw JSON.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil || args == nil {
		return make(map[string]any)
	}
	return args
}

// EncodeToolArguments is the inverse of ParseToolArguments.
func EncodeToolArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

var toolCallTagPattern = regexp.MustCompile(`(?s)<tool_call>\s*(.*?)\s*</tool_call>`)

type leakedCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ParseLeakedToolCalls recovers tool calls that a model wrote into its text
// instead of using the API's tool-call channel. Qwen-style
// <tool_call>{"name": ..., "arguments": {...}}</tool_call> blocks and a reply
// consisting of a single such JSON object are recognized. Only names of
// advertised tools are returned.
func ParseLeakedToolCalls(content string, tools []mcp.ToolSchema) []model.ToolCall {
	if len(tools) == 0 {
		return nil
	}
	known := make(map[string]bool, len(tools))
	for _, tool := range tools {
		known[tool.Name] = true
	}

	var candidates []string
	for _, match := range toolCallTagPattern.FindAllStringSubmatch(content, -1) {
		candidates = append(candidates, match[1])
	}
	if trimmed := strings.TrimSpace(content); len(candidates) == 0 && strings.HasPrefix(trimmed, "{") {
		candidates = append(candidates, trimmed)
	}

	var calls []model.ToolCall
	for _, candidate := range candidates {
		var call leakedCall
		if err := json.Unmarshal([]byte(candidate), &call); err != nil {
			continue
		}
		if !known[call.Name] {
			continue
		}
		if call.Arguments == nil {
			call.Arguments = map[string]any{}
		}
		calls = append(calls, model.ToolCall{Name: call.Name, Arguments: call.Arguments})
	}
	return calls
}
