package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	// User prompt style
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Assistant text style, used when markdown rendering is off
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Reasoning output
	ThinkingStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	// Tool call header
	ToolStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)
)

// FormatHints formats alternating keys and descriptions.
// Usage: FormatHints("/tools", "list tools", "/exit", "quit")
// Result: "/tools list tools  /exit quit" (descriptions in accent blue+bold)
func FormatHints(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}

// Banner is printed once when the REPL starts.
func Banner(modelName string, toolCount int, workDir string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("codingagent"))
	b.WriteString(DimStyle.Render(" · " + modelName))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(workDir))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(pluralize(toolCount, "tool", "tools") + " available"))
	b.WriteString("\n")
	b.WriteString(FormatHints("/tools", "list tools", "/copy", "copy last reply", "/exit", "quit"))
	b.WriteString("\n")
	return b.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
