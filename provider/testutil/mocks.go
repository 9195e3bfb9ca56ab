package testutil

import (
	"context"
	"sync"

	"codingagent/mcp"
	"codingagent/model"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatWithToolsFunc func(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error
	PingFunc          func(ctx context.Context) error

	// State
	currentModel string

	mu       sync.Mutex
	requests []Request
}

// Request is one recorded ChatWithTools call.
type Request struct {
	Messages []model.Message
	Tools    []mcp.ToolSchema
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatWithToolsFunc = mock.defaultChatWithTools
	mock.PingFunc = mock.defaultPing
	return mock
}

// NewScriptedProvider returns a mock that replays one event list per call.
// Calls beyond the script answer "done".
func NewScriptedProvider(modelName string, rounds ...[]model.StreamEvent) *MockProvider {
	mock := NewMockProvider(modelName)
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error {
		round := len(mock.Requests()) - 1
		if round >= len(rounds) {
			return callback(model.TextEvent("done"))
		}
		for _, ev := range rounds[round] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := callback(ev); err != nil {
				return err
			}
		}
		return nil
	}
	return mock
}

func (m *MockProvider) defaultChatWithTools(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error {
	return callback(model.TextEvent("Mock response"))
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcp.ToolSchema, callback model.StreamCallback) error {
	m.mu.Lock()
	m.requests = append(m.requests, Request{Messages: messages, Tools: tools})
	m.mu.Unlock()
	return m.ChatWithToolsFunc(ctx, messages, tools, callback)
}

// Requests returns the recorded ChatWithTools calls.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
