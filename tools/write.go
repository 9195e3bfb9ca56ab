package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"codingagent/mcp"
)

type WriteFileRequest struct {
	FilePath string `mapstructure:"file_path"`
	Content  string `mapstructure:"content"`
}

func (r *WriteFileRequest) Validate() error {
	if r.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	if !filepath.IsAbs(r.FilePath) {
		return fmt.Errorf("file_path must be absolute: %s", r.FilePath)
	}
	return nil
}

var writeFileSchema = mcp.ToolSchema{
	Name: "write_file",
	Description: "Writes a file to the local filesystem, overwriting any existing file at the path. " +
		"The file_path parameter must be an absolute path. Missing parent directories are created. " +
		"Read an existing file before overwriting it, and prefer editing existing files over creating new ones.",
	Parameters: mcp.ToolParameters{
		Required:   []string{"file_path"},
		Properties: map[string]string{"file_path": "string", "content": "string"},
	},
}

func WriteFile(ctx context.Context, req WriteFileRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(req.FilePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(req.FilePath, []byte(req.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return fmt.Sprintf("File %s has been created.", req.FilePath), nil
}
