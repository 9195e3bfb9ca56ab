package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", ""},
		{"trailing newline", "a\nb\n", "     1\ta\n     2\tb\n"},
		{"no trailing newline", "a\nb", "     1\ta\n     2\tb"},
		{"blank line kept", "a\n\nb\n", "     1\ta\n     2\t\n     3\tb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NumberLines(tt.content))
		})
	}
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": "first\nsecond\n"})
	path := filepath.Join(root, "notes.txt")

	tests := []struct {
		name string
		req  ReadFileRequest
		want string
	}{
		{"whole file", ReadFileRequest{FilePath: path}, "     1\tfirst\n     2\tsecond\n"},
		{"offset", ReadFileRequest{FilePath: path, Offset: 7}, "first\n     2\tsecond\n"},
		{"limit", ReadFileRequest{FilePath: path, Limit: 5}, "     " + TruncatedMarker},
		{"offset past end", ReadFileRequest{FilePath: path, Offset: 1000}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFileDefaultLimit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"big.txt": strings.Repeat("x", DefaultReadLimit)})

	got, err := ReadFile(context.Background(), ReadFileRequest{FilePath: filepath.Join(root, "big.txt")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, TruncatedMarker))
	assert.Len(t, []rune(got), DefaultReadLimit+len(TruncatedMarker))
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(context.Background(), ReadFileRequest{FilePath: filepath.Join(t.TempDir(), "nope.txt")})
	assert.ErrorContains(t, err, "file not found")

	for _, path := range []string{"/tmp/a.png", "/tmp/b.JPG", "/tmp/c.pdf"} {
		req := ReadFileRequest{FilePath: path}
		assert.Error(t, req.Validate(), path)
	}

	req := ReadFileRequest{FilePath: "rel.txt"}
	assert.ErrorContains(t, req.Validate(), "must be absolute")

	req = ReadFileRequest{FilePath: "/tmp/x.go"}
	require.NoError(t, req.Validate())
	assert.Equal(t, DefaultReadLimit, req.Limit)
}
