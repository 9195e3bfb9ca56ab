package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codingagent/mcp"
)

const (
	// DefaultReadLimit is the character limit of read_file output.
	DefaultReadLimit = 20000

	// TruncatedMarker ends read_file output that hit the limit.
	TruncatedMarker = "\n__TRUNCATED__\n"
)

var unreadableExtensions = []string{".png", ".jpg", ".pdf"}

type ReadFileRequest struct {
	FilePath string `mapstructure:"file_path"`
	Offset   int    `mapstructure:"offset"`
	Limit    int    `mapstructure:"limit"`
}

func (r *ReadFileRequest) Validate() error {
	if r.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	if !filepath.IsAbs(r.FilePath) {
		return fmt.Errorf("file_path must be absolute: %s", r.FilePath)
	}
	for _, ext := range unreadableExtensions {
		if strings.HasSuffix(strings.ToLower(r.FilePath), ext) {
			return fmt.Errorf("file ending with .png, .jpg or .pdf can not be read")
		}
	}
	if r.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	if r.Limit <= 0 {
		r.Limit = DefaultReadLimit
	}
	return nil
}

var readFileSchema = mcp.ToolSchema{
	Name: "read_file",
	Description: "Reads a file from the local filesystem. The file_path parameter must be an absolute path. " +
		"Results are returned in cat -n format, with line numbers starting at 1. " +
		"offset skips that many characters of the numbered output and limit caps its length (default 20000). " +
		"Image and PDF files can not be read. " +
		"If the output ends with __TRUNCATED__ tell the user, and only read further if asked.",
	Parameters: mcp.ToolParameters{
		Required:   []string{"file_path"},
		Properties: map[string]string{"file_path": "string", "offset": "integer", "limit": "integer"},
	},
}

// ReadFile returns the file numbered like cat -n, windowed by offset and
// limit.
func ReadFile(ctx context.Context, req ReadFileRequest) (string, error) {
	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", req.FilePath)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	output := []rune(NumberLines(string(data)))
	if req.Offset > 0 {
		if req.Offset >= len(output) {
			return "", nil
		}
		output = output[req.Offset:]
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	if len(output) > limit {
		return string(output[:limit]) + TruncatedMarker, nil
	}
	return string(output), nil
}

// NumberLines renders content the way cat -n does: a six-wide right-aligned
// line number and a tab before every line.
func NumberLines(content string) string {
	if content == "" {
		return ""
	}

	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var b strings.Builder
	b.Grow(len(content) + len(lines)*7)
	for i, line := range lines {
		fmt.Fprintf(&b, "%6d\t%s", i+1, line)
	}
	return b.String()
}
