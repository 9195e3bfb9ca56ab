package provider

import (
	"strings"

	"codingagent/mcp"
)

// buildToolInstructions creates short tool-use guidance for hosted models.
// Local models get the tool list through Ollama's template instead.
func buildToolInstructions(tools []mcp.ToolSchema) string {
	toolNames := make([]string, 0, len(tools))
	for _, tool := range tools {
		toolNames = append(toolNames, tool.Name)
	}

	return strings.Join([]string{
		"TOOLS: " + strings.Join(toolNames, ", "),
		"",
		"When the task requires a tool:",
		"1. Determine which tool is needed",
		"2. Check if you have all required parameters",
		"3. If yes: call the tool IMMEDIATELY without explanation",
		"4. If no: ask for the missing parameter ONLY",
		"",
		"Paths passed to file tools must be absolute.",
		"All tool parameters are strings, including numbers.",
		"",
		"DO NOT:",
		"- List available tools",
		"- Explain what you're about to do",
		"- Repeat a failed call unchanged",
	}, "\n")
}
