package testutil

import (
	"time"

	"codingagent/mcp"
	"codingagent/model"
)

// TestMessages returns a transcript with one tool round trip
func TestMessages() []model.Message {
	now := time.Now()
	return []model.Message{
		{Role: model.RoleSystem, Content: "You are a coding agent.", Timestamp: now},
		{Role: model.RoleUser, Content: "What is in /tmp?", Timestamp: now},
		{
			Role:    model.RoleAssistant,
			Content: "Let me check.",
			ToolCalls: []model.ToolCall{
				{ID: "call_1_0", Name: "ls", Arguments: map[string]any{"path": "/tmp"}},
			},
			Timestamp: now,
		},
		{Role: model.RoleTool, Content: `["/tmp/a.txt"]`, ToolName: "ls", ToolCallID: "call_1_0", Timestamp: now},
		{Role: model.RoleAssistant, Content: "/tmp holds a.txt.", Timestamp: now},
	}
}

// SingleUserMessage returns a system and user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "You are a coding agent.", Timestamp: time.Now()},
		{Role: model.RoleUser, Content: content, Timestamp: time.Now()},
	}
}

// TestToolSchemas returns sample tool schemas for testing
func TestToolSchemas() []mcp.ToolSchema {
	return []mcp.ToolSchema{
		{
			Name:        "ls",
			Description: "List a directory",
			Parameters: mcp.ToolParameters{
				Required:   []string{"path"},
				Properties: map[string]string{"path": "string", "ignore": "string"},
			},
		},
		{
			Name:        "read_file",
			Description: "Read a file",
			Parameters: mcp.ToolParameters{
				Required:   []string{"file_path"},
				Properties: map[string]string{"file_path": "string", "offset": "integer", "limit": "integer"},
			},
		},
	}
}
