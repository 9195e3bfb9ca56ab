package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codingagent/mcp"
)

// LsRequest lists one directory.
type LsRequest struct {
	Path   string `mapstructure:"path"`
	Ignore string `mapstructure:"ignore"`
}

func (r *LsRequest) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("path is required")
	}
	if !filepath.IsAbs(r.Path) {
		return fmt.Errorf("path must be absolute: %s", r.Path)
	}
	return nil
}

func (r *LsRequest) ignorePatterns() []string {
	var patterns []string
	for _, p := range strings.Split(r.Ignore, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

var lsSchema = mcp.ToolSchema{
	Name: "ls",
	Description: "Lists files and directories in a given path, hidden files included. " +
		"The path parameter must be an absolute path. " +
		"Optionally pass a comma-separated list of gitignore-style patterns to skip with the ignore parameter. " +
		"Prefer the glob tool when you know which files to look for.",
	Parameters: mcp.ToolParameters{
		Required:   []string{"path"},
		Properties: map[string]string{"path": "string", "ignore": "string"},
	},
}

// Ls returns a JSON array of the absolute paths of the entries in req.Path.
func Ls(ctx context.Context, req LsRequest) (string, error) {
	info, err := os.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", req.Path)
		}
		return "", fmt.Errorf("failed to stat %s: %w", req.Path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", req.Path)
	}

	entries, err := os.ReadDir(req.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}

	matcher := newIgnoreMatcher(req.ignorePatterns())
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if matcher.Match(entry.Name(), entry.IsDir()) {
			continue
		}
		paths = append(paths, filepath.Join(req.Path, entry.Name()))
	}

	data, err := json.Marshal(paths)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
