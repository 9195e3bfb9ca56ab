package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":          "vendor/\n*.gen.go\n",
		"main.go":             "",
		"internal/a/a.go":     "",
		"internal/a/a.gen.go": "",
		"vendor/dep/dep.go":   "",
		"README.md":           "",
	})

	// make the ordering by mtime deterministic
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "main.go"), base, base))
	newer := base.Add(time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(root, "internal/a/a.go"), newer, newer))

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"recursive, newest first, gitignore respected", "**/*.go", []string{"internal/a/a.go", "main.go"}},
		{"top level only", "*.md", []string{"README.md"}},
		{"no matches", "**/*.rs", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Glob(context.Background(), GlobRequest{RootDirectory: root, Pattern: tt.pattern})
			require.NoError(t, err)
			got := decodePaths(t, out)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlobRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     GlobRequest
		wantErr string
	}{
		{"ok", GlobRequest{RootDirectory: "/tmp", Pattern: "**/*.go"}, ""},
		{"relative root", GlobRequest{RootDirectory: "tmp", Pattern: "*"}, "must be absolute"},
		{"missing pattern", GlobRequest{RootDirectory: "/tmp"}, "pattern is required"},
		{"bad pattern", GlobRequest{RootDirectory: "/tmp", Pattern: "[abc"}, "invalid pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
