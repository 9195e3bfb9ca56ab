package mcp

import (
	"context"
	"slices"
	"strings"
)

// ToolParameters describes the arguments a tool accepts. Property values are
// JSON-schema type tags ("string", "integer", ...) as declared by the provider.
type ToolParameters struct {
	Required   []string
	Properties map[string]string
}

// ToolSchema is the immutable description of one tool, built when its
// provider is registered.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  ToolParameters
}

// ParameterNames returns the property names in a stable order: required
// parameters first in declared order, then the optional ones sorted.
func (s ToolSchema) ParameterNames() []string {
	seen := make(map[string]bool, len(s.Parameters.Properties))
	names := make([]string, 0, len(s.Parameters.Properties))
	for _, name := range s.Parameters.Required {
		if _, ok := s.Parameters.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	var optional []string
	for name := range s.Parameters.Properties {
		if !seen[name] {
			optional = append(optional, name)
		}
	}
	slices.Sort(optional)

	return append(names, optional...)
}

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentOther ContentType = "other"
)

// ContentBlock is one typed block of a tool result. Only text blocks carry
// meaning for the conversation.
type ContentBlock struct {
	Type ContentType
	Text string
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentText, Text: text}
}

// ToolCallResult is what a provider returns for one call.
type ToolCallResult struct {
	Content []ContentBlock
	IsError bool
}

// Text concatenates the text blocks in order; other block types contribute
// nothing.
func (r *ToolCallResult) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == ContentText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ErrorResult builds an error result carrying a single text block.
func ErrorResult(msg string) *ToolCallResult {
	return &ToolCallResult{
		Content: []ContentBlock{TextBlock(msg)},
		IsError: true,
	}
}

// TextResult builds a successful single-block result.
func TextResult(text string) *ToolCallResult {
	return &ToolCallResult{Content: []ContentBlock{TextBlock(text)}}
}

// ToolProvider is a source of callable tools. Implementations run tools in
// the current process or forward them to a child process.
type ToolProvider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// ListTools returns the provider's tool schemas.
	ListTools(ctx context.Context) ([]ToolSchema, error)

	// Call executes the named tool. A tool-level failure is reported through
	// ToolCallResult.IsError; a returned error means the provider itself
	// could not serve the call.
	Call(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error)

	// Close releases the provider's resources. Safe to call more than once.
	Close() error
}

// availability is implemented by providers that can fail permanently at
// runtime (e.g. a child process that died).
type availability interface {
	Available() bool
}

func isAvailable(p ToolProvider) bool {
	a, ok := p.(availability)
	return !ok || a.Available()
}
