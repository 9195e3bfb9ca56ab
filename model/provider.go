package model

import (
	"context"

	"codingagent/mcp"
)

// Provider abstracts inference backends (Ollama, OpenAI, Anthropic, Gemini).
//
// The interface lives in the model package so provider implementations can
// import model without a cycle.
type Provider interface {
	// ChatWithTools streams one response for the transcript. Events are
	// delivered synchronously; the next chunk is not read until the callback
	// returns.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcp.ToolSchema, callback StreamCallback) error

	// GetModel returns the model name sent with each request.
	GetModel() string

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// ToolRouter is the part of mcp.Registry the orchestrator needs.
type ToolRouter interface {
	AllSchemas() []mcp.ToolSchema
	Resolve(name string) (mcp.ToolProvider, error)
}
