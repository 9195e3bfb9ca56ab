package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func decodePaths(t *testing.T, out string) []string {
	t.Helper()
	var paths []string
	require.NoError(t, json.Unmarshal([]byte(out), &paths))
	return paths
}

func TestLs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":      "package main",
		".env":         "X=1",
		"debug.log":    "",
		"pkg/util.go":  "package pkg",
		"build/out.go": "",
	})

	tests := []struct {
		name   string
		ignore string
		want   []string
	}{
		{
			name: "hidden files included",
			want: []string{".env", "build", "debug.log", "main.go", "pkg"},
		},
		{
			name:   "ignore patterns",
			ignore: "*.log, build/",
			want:   []string{".env", "main.go", "pkg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Ls(context.Background(), LsRequest{Path: root, Ignore: tt.ignore})
			require.NoError(t, err)

			var want []string
			for _, name := range tt.want {
				want = append(want, filepath.Join(root, name))
			}
			assert.Equal(t, want, decodePaths(t, out))
		})
	}
}

func TestLsErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"file.txt": "x"})

	_, err := Ls(context.Background(), LsRequest{Path: filepath.Join(root, "missing")})
	assert.ErrorContains(t, err, "path does not exist")

	_, err = Ls(context.Background(), LsRequest{Path: filepath.Join(root, "file.txt")})
	assert.ErrorContains(t, err, "not a directory")

	req := LsRequest{Path: "relative/dir"}
	assert.ErrorContains(t, req.Validate(), "must be absolute")
}
