// Package tools implements the builtin tools served in process: ls, glob,
// git, read_file and write_file.
package tools

import (
	"codingagent/mcp"
)

// ProviderName is the name the builtin provider registers under.
const ProviderName = "builtin"

// Schemas returns the builtin tool schemas in registration order.
func Schemas() []mcp.ToolSchema {
	return []mcp.ToolSchema{lsSchema, globSchema, gitSchema, readFileSchema, writeFileSchema}
}

// All returns the builtin tools with their handlers.
func All() []mcp.Tool {
	return []mcp.Tool{
		{Schema: lsSchema, Handler: mcp.TypedHandler(Ls)},
		{Schema: globSchema, Handler: mcp.TypedHandler(Glob)},
		{Schema: gitSchema, Handler: mcp.TypedHandler(Git)},
		{Schema: readFileSchema, Handler: mcp.TypedHandler(ReadFile)},
		{Schema: writeFileSchema, Handler: mcp.TypedHandler(WriteFile)},
	}
}

// Builtins returns an in-process provider serving every builtin tool.
func Builtins() *mcp.InProcessProvider {
	return mcp.NewInProcessProvider(ProviderName, All()...)
}
