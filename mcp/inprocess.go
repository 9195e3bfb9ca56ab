package mcp

import (
	"context"
	"fmt"
	"sync"

	"codingagent/config"

	"github.com/mitchellh/mapstructure"
)

// Handler executes one in-process tool.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool pairs a schema with the function that implements it.
type Tool struct {
	Schema  ToolSchema
	Handler Handler
}

// InProcessProvider serves tools implemented as plain Go functions.
type InProcessProvider struct {
	name  string
	tools []Tool
	index map[string]int

	mu     sync.RWMutex
	closed bool
}

func NewInProcessProvider(name string, tools ...Tool) *InProcessProvider {
	p := &InProcessProvider{
		name:  name,
		index: make(map[string]int, len(tools)),
	}
	for _, tool := range tools {
		p.Add(tool)
	}
	return p
}

// Add appends a tool, replacing any earlier tool with the same name.
func (p *InProcessProvider) Add(tool Tool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i, ok := p.index[tool.Schema.Name]; ok {
		p.tools[i] = tool
		return
	}
	p.index[tool.Schema.Name] = len(p.tools)
	p.tools = append(p.tools, tool)
}

func (p *InProcessProvider) Name() string {
	return p.name
}

func (p *InProcessProvider) ListTools(ctx context.Context) ([]ToolSchema, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	schemas := make([]ToolSchema, len(p.tools))
	for i, tool := range p.tools {
		schemas[i] = tool.Schema
	}
	return schemas, nil
}

// Call runs the handler in the caller's goroutine. Handler errors and panics
// are turned into error results.
func (p *InProcessProvider) Call(ctx context.Context, name string, args map[string]any) (result *ToolCallResult, err error) {
	p.mu.RLock()
	i, ok := p.index[name]
	var tool Tool
	if ok {
		tool = p.tools[i]
	}
	closed := p.closed
	p.mu.RUnlock()

	switch {
	case closed:
		return nil, &ProviderUnavailableError{Provider: p.name}
	case !ok:
		return nil, &ToolNotFoundError{Name: name}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[TOOLS] %s: recovered panic in %s: %v", p.name, name, r)
			}
			result = ErrorResult(fmt.Sprintf("panic: %v", r))
			err = nil
		}
	}()

	text, callErr := tool.Handler(ctx, args)
	if callErr != nil {
		return ErrorResult(callErr.Error()), nil
	}
	return TextResult(text), nil
}

func (p *InProcessProvider) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

func (p *InProcessProvider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// TypedHandler adapts a handler taking a request struct. Arguments are decoded
// with weak typing since models send every value as a string, and the request
// is validated when it implements Validate() error.
func TypedHandler[Req any](fn func(ctx context.Context, req Req) (string, error)) Handler {
	return func(ctx context.Context, args map[string]any) (string, error) {
		var req Req
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &req,
			WeaklyTypedInput: true,
			ErrorUnused:      false,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := decoder.Decode(args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		if v, ok := any(&req).(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return "", err
			}
		}

		return fn(ctx, req)
	}
}
