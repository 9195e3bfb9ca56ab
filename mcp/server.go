package mcp

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewToolServer exposes the tools of an in-process provider as an MCP server,
// so the same tools can run behind a ProcessProvider in another process.
func NewToolServer(name, version string, provider *InProcessProvider) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	schemas, err := provider.ListTools(context.Background())
	if err != nil {
		return nil, err
	}

	for _, schema := range schemas {
		toolName := schema.Name
		s.AddTool(ToMCPTool(schema), func(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
			result, err := provider.Call(ctx, toolName, request.GetArguments())
			if err != nil {
				return mcptypes.NewToolResultError(err.Error()), nil
			}
			if result.IsError {
				return mcptypes.NewToolResultError(result.Text()), nil
			}
			return mcptypes.NewToolResultText(result.Text()), nil
		})
	}

	return s, nil
}

// ServeStdio runs the tool server on the process's stdin/stdout until the
// input closes.
func ServeStdio(name, version string, provider *InProcessProvider) error {
	s, err := NewToolServer(name, version, provider)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
