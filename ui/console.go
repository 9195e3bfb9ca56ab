package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"codingagent/mcp"
	"codingagent/model"

	"github.com/mattn/go-runewidth"
)

const resultPreviewLines = 3

// Console prints orchestrator progress to a terminal. It implements
// model.Observer.
type Console struct {
	out      io.Writer
	width    int
	markdown bool

	mu       sync.Mutex
	thinking bool
	midLine  bool
}

// NewConsole writes to out. With markdown enabled, assistant content is
// rendered once the message is complete instead of streamed.
func NewConsole(out io.Writer, width int, markdown bool) *Console {
	if width <= 0 {
		width = 80
	}
	return &Console{out: out, width: width, markdown: markdown}
}

func (c *Console) OnThinking(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.thinking {
		c.thinking = true
		c.newline()
		fmt.Fprint(c.out, DimStyle.Render("thinking: "))
	}
	c.write(ThinkingStyle.Render(text), text)
}

func (c *Console) OnContent(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endThinking()
	if !c.markdown {
		c.write(AssistantStyle.Render(text), text)
	}
}

func (c *Console) OnAssistant(msg model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endThinking()
	if c.markdown && strings.TrimSpace(msg.Content) != "" {
		c.newline()
		fmt.Fprint(c.out, RenderMarkdown(msg.Content, c.width-4))
		return
	}
	c.newline()
}

func (c *Console) OnToolCall(call model.ToolCall) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endThinking()
	c.newline()
	line := "⏺ " + call.Name + "(" + formatArguments(call.Arguments) + ")"
	fmt.Fprintln(c.out, ToolStyle.Render(c.truncate(line)))
}

func (c *Console) OnToolResult(call model.ToolCall, result string, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.newline()
	style := DimStyle
	if isError {
		style = ErrorStyle
	}
	for _, line := range previewLines(result, resultPreviewLines) {
		fmt.Fprintln(c.out, style.Render(c.truncate("  ⎿ "+line)))
	}
}

func (c *Console) OnNotice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endThinking()
	c.newline()
	fmt.Fprintln(c.out, NoticeStyle.Render(text))
}

// Error prints a session-level failure.
func (c *Console) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endThinking()
	c.newline()
	fmt.Fprintln(c.out, ErrorStyle.Render("Error: "+err.Error()))
}

// Tools prints the advertised tools, one per line.
func (c *Console) Tools(schemas []mcp.ToolSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sorted := append([]mcp.ToolSchema(nil), schemas...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	nameWidth := 0
	for _, s := range sorted {
		nameWidth = max(nameWidth, runewidth.StringWidth(s.Name))
	}

	for _, s := range sorted {
		desc := strings.SplitN(s.Description, "\n", 2)[0]
		name := runewidth.FillRight(s.Name, nameWidth)
		fmt.Fprintln(c.out, TitleStyle.Render(name)+"  "+DimStyle.Render(runewidth.Truncate(desc, max(c.width-nameWidth-2, 10), "...")))
	}
}

// Println writes a plain line.
func (c *Console) Println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.newline()
	fmt.Fprintln(c.out, text)
}

func (c *Console) endThinking() {
	if c.thinking {
		c.thinking = false
		c.newline()
	}
}

func (c *Console) write(styled, raw string) {
	if raw == "" {
		return
	}
	fmt.Fprint(c.out, styled)
	c.midLine = !strings.HasSuffix(raw, "\n")
}

func (c *Console) newline() {
	if c.midLine {
		fmt.Fprintln(c.out)
		c.midLine = false
	}
}

func (c *Console) truncate(s string) string {
	return runewidth.Truncate(s, c.width, "...")
}

// formatArguments renders arguments as key=value pairs in key order.
func formatArguments(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v := strings.ReplaceAll(fmt.Sprint(args[k]), "\n", "\\n")
		parts[i] = k + "=" + v
	}
	return strings.Join(parts, ", ")
}

// previewLines returns the first n non-blank lines of s, with a count of the
// lines left out.
func previewLines(s string, n int) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return []string{"(no output)"}
	}
	if len(lines) > n {
		rest := len(lines) - n
		lines = append(lines[:n], fmt.Sprintf("… +%d lines", rest))
	}
	return lines
}
