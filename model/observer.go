package model

import (
	"context"
	"time"
)

// Observer receives progress from the orchestrator as it happens. Calls are
// made from the goroutine running Submit.
type Observer interface {
	OnThinking(text string)
	OnContent(text string)
	OnAssistant(msg Message)
	OnToolCall(call ToolCall)
	OnToolResult(call ToolCall, result string, isError bool)
	OnNotice(text string)
}

type NopObserver struct{}

func (NopObserver) OnThinking(string)                   {}
func (NopObserver) OnContent(string)                    {}
func (NopObserver) OnAssistant(Message)                 {}
func (NopObserver) OnToolCall(ToolCall)                 {}
func (NopObserver) OnToolResult(ToolCall, string, bool) {}
func (NopObserver) OnNotice(string)                     {}

// ToolCallRecord describes one finished tool call.
type ToolCallRecord struct {
	Round     int
	CallID    string
	Name      string
	Arguments map[string]any
	Result    string
	IsError   bool
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder persists tool call records, for example to an audit log.
type Recorder interface {
	RecordToolCall(ctx context.Context, record ToolCallRecord) error
}
