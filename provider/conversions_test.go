package provider

import (
	"testing"
	"time"

	"codingagent/model"
	"codingagent/provider/testutil"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []model.Message
		expected []api.Message
	}{
		{
			name:     "empty slice",
			input:    []model.Message{},
			expected: []api.Message{},
		},
		{
			name: "plain messages",
			input: []model.Message{
				{Role: "user", Content: "Hello", Timestamp: time.Now()},
				{Role: "assistant", Content: "Hi there", Timestamp: time.Now()},
			},
			expected: []api.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi there"},
			},
		},
		{
			name: "tool result keeps tool name",
			input: []model.Message{
				{Role: "tool", Content: "ok", ToolName: "ls", ToolCallID: "call_1_0"},
			},
			expected: []api.Message{
				{Role: "tool", Content: "ok", ToolName: "ls"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToOllamaMessages(tt.input)

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, want %d", len(result), len(tt.expected))
			}

			for i, msg := range result {
				if msg.Role != tt.expected[i].Role {
					t.Errorf("message %d role: got %q, want %q", i, msg.Role, tt.expected[i].Role)
				}
				if msg.Content != tt.expected[i].Content {
					t.Errorf("message %d content: got %q, want %q", i, msg.Content, tt.expected[i].Content)
				}
				if msg.ToolName != tt.expected[i].ToolName {
					t.Errorf("message %d tool name: got %q, want %q", i, msg.ToolName, tt.expected[i].ToolName)
				}
			}
		})
	}
}

func TestConvertToOllamaMessagesCarriesToolCalls(t *testing.T) {
	result := ConvertToOllamaMessages(testutil.TestMessages())
	require.Len(t, result, 5)

	calls := result[2].ToolCalls
	require.Len(t, calls, 1)
	assert.Equal(t, "ls", calls[0].Function.Name)
	assert.Equal(t, "/tmp", calls[0].Function.Arguments["path"])
	assert.Equal(t, 0, calls[0].Function.Index)
}

func TestConvertToProviderToolCalls(t *testing.T) {
	tests := []struct {
		name  string
		input []api.ToolCall
		want  []model.ToolCall
	}{
		{name: "nil", input: nil, want: nil},
		{name: "empty", input: []api.ToolCall{}, want: nil},
		{
			name: "two calls",
			input: []api.ToolCall{
				{Function: api.ToolCallFunction{Name: "ls", Arguments: map[string]any{"path": "."}}},
				{Function: api.ToolCallFunction{Index: 1, Name: "read_file", Arguments: map[string]any{"file_path": "a.go"}}},
			},
			want: []model.ToolCall{
				{Name: "ls", Arguments: map[string]any{"path": "."}},
				{Name: "read_file", Arguments: map[string]any{"file_path": "a.go"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertToProviderToolCalls(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i].Name, got[i].Name)
				assert.EqualValues(t, tt.want[i].Arguments, got[i].Arguments)
			}
		})
	}
}

func TestConvertFromProviderToolCalls(t *testing.T) {
	assert.Nil(t, ConvertFromProviderToolCalls(nil))

	got := ConvertFromProviderToolCalls([]model.ToolCall{
		{Name: "ls", Arguments: map[string]any{"path": "."}},
		{Name: "git", Arguments: map[string]any{"args": "status"}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].Function.Index)
	assert.Equal(t, "git", got[1].Function.Name)
	assert.Equal(t, "status", got[1].Function.Arguments["args"])
}

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"object", `{"path":"/tmp","depth":2}`, map[string]any{"path": "/tmp", "depth": float64(2)}},
		{"empty string", "", map[string]any{}},
		{"null", "null", map[string]any{}},
		{"invalid", `{"path":`, map[string]any{}},
		{"array", `[1,2]`, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseToolArguments(tt.in))
		})
	}
}

func TestEncodeToolArguments(t *testing.T) {
	assert.Equal(t, "{}", EncodeToolArguments(nil))
	assert.Equal(t, `{"path":"/tmp"}`, EncodeToolArguments(map[string]any{"path": "/tmp"}))
}

func TestParseLeakedToolCalls(t *testing.T) {
	tools := testutil.TestToolSchemas()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "tagged call",
			content: "Sure.\n<tool_call>\n{\"name\": \"ls\", \"arguments\": {\"path\": \"/tmp\"}}\n</tool_call>",
			want:    []string{"ls"},
		},
		{
			name:    "two tagged calls",
			content: `<tool_call>{"name":"ls","arguments":{"path":"."}}</tool_call><tool_call>{"name":"read_file","arguments":{"file_path":"go.mod"}}</tool_call>`,
			want:    []string{"ls", "read_file"},
		},
		{
			name:    "bare json object",
			content: `  {"name": "read_file", "arguments": {"file_path": "main.go"}}  `,
			want:    []string{"read_file"},
		},
		{
			name:    "unknown tool ignored",
			content: `<tool_call>{"name":"rm","arguments":{"path":"/"}}</tool_call>`,
		},
		{
			name:    "plain prose",
			content: "The directory is empty.",
		},
		{
			name:    "malformed json",
			content: `<tool_call>{"name":"ls",</tool_call>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := ParseLeakedToolCalls(tt.content, tools)
			var names []string
			for _, c := range calls {
				names = append(names, c.Name)
				assert.NotNil(t, c.Arguments)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	assert.Nil(t, ParseLeakedToolCalls(`{"name":"ls","arguments":{}}`, nil))
}

func TestConvertToOpenAIMessages(t *testing.T) {
	msgs := append(testutil.TestMessages(), model.Message{Role: model.RoleTool, ToolName: "git", Content: "clean"})
	result := ConvertToOpenAIMessages(msgs)
	require.Len(t, result, 6)

	assert.NotNil(t, result[0].OfSystem)
	assert.NotNil(t, result[1].OfUser)

	assistant := result[2].OfAssistant
	require.NotNil(t, assistant)
	require.Len(t, assistant.ToolCalls, 1)
	fn := assistant.ToolCalls[0].OfFunction
	require.NotNil(t, fn)
	assert.Equal(t, "call_1_0", fn.ID)
	assert.Equal(t, "ls", fn.Function.Name)
	assert.JSONEq(t, `{"path":"/tmp"}`, fn.Function.Arguments)
	assert.Equal(t, "Let me check.", assistant.Content.OfString.Value)

	tool := result[3].OfTool
	require.NotNil(t, tool)
	assert.Equal(t, "call_1_0", tool.ToolCallID)

	// a result without a call id cannot be paired
	assert.Nil(t, result[5].OfTool)
	assert.NotNil(t, result[5].OfUser)
}

func TestConvertToAnthropicMessages(t *testing.T) {
	msgs := []model.Message{
		{Role: model.RoleSystem, Content: "be brief"},
		{Role: model.RoleUser, Content: "inspect"},
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "toolu_1", Name: "ls", Arguments: map[string]any{"path": "."}},
				{ID: "toolu_2", Name: "read_file", Arguments: map[string]any{"file_path": "go.mod"}},
			},
		},
		{Role: model.RoleTool, ToolName: "ls", ToolCallID: "toolu_1", Content: "a.go"},
		{Role: model.RoleTool, ToolName: "read_file", ToolCallID: "toolu_2", Content: "module x"},
		{Role: model.RoleAssistant, Content: "done"},
	}

	converted, system := ConvertToAnthropicMessages(msgs)
	require.Len(t, system, 1)
	assert.Equal(t, "be brief", system[0].Text)

	require.Len(t, converted, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, converted[0].Role)

	require.Len(t, converted[1].Content, 2)
	require.NotNil(t, converted[1].Content[0].OfToolUse)
	assert.Equal(t, "toolu_1", converted[1].Content[0].OfToolUse.ID)

	// both results answer the same turn
	results := converted[2]
	assert.Equal(t, anthropic.MessageParamRoleUser, results.Role)
	require.Len(t, results.Content, 2)
	assert.Equal(t, "toolu_1", results.Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, "toolu_2", results.Content[1].OfToolResult.ToolUseID)
}

func TestConvertToGeminiContents(t *testing.T) {
	msgs := []model.Message{
		{Role: model.RoleSystem, Content: "be brief"},
		{Role: model.RoleUser, Content: "inspect"},
		{
			Role:      model.RoleAssistant,
			ToolCalls: []model.ToolCall{{Name: "ls", Arguments: map[string]any{"path": "."}}},
		},
		{Role: model.RoleTool, ToolName: "ls", Content: "a.go"},
		{Role: model.RoleTool, ToolName: "git", Content: `{"branch":"main"}`},
	}

	contents, system := ConvertToGeminiContents(msgs)
	assert.Equal(t, "be brief", system)
	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "ls", contents[1].Parts[0].FunctionCall.Name)

	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, map[string]any{"output": "a.go"}, contents[2].Parts[0].FunctionResponse.Response)
	assert.Equal(t, map[string]any{"branch": "main"}, contents[2].Parts[1].FunctionResponse.Response)
}
