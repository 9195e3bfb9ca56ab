package model

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of the transcript sent to the model.
type Message struct {
	Role    string
	Content string

	// ToolName tags tool results with the tool that produced them.
	ToolName string

	// ToolCallID pairs a tool result with the call it answers. Backends that
	// do not use call ids leave it empty.
	ToolCallID string

	// ToolCalls are the calls an assistant message requested.
	ToolCalls []ToolCall

	Timestamp time.Time
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}
