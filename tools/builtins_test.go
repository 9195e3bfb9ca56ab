package tools

import (
	"context"
	"path/filepath"
	"testing"

	"codingagent/mcp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsProvider(t *testing.T) {
	p := Builtins()
	assert.Equal(t, ProviderName, p.Name())

	schemas, err := p.ListTools(context.Background())
	require.NoError(t, err)

	var names []string
	for _, s := range schemas {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"ls", "glob", "git", "read_file", "write_file"}, names)
}

func TestBuiltinsThroughRegistry(t *testing.T) {
	reg := mcp.NewRegistry(mcp.CollisionShadow)
	defer reg.Close()

	_, err := reg.Register(context.Background(), Builtins())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	provider, err := reg.Resolve("write_file")
	require.NoError(t, err)
	result, err := provider.Call(context.Background(), "write_file", map[string]any{"file_path": path, "content": "x\n"})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	provider, err = reg.Resolve("read_file")
	require.NoError(t, err)

	// models send every argument as a string
	result, err = provider.Call(context.Background(), "read_file", map[string]any{"file_path": path, "offset": "0"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "     1\tx\n", result.Text())

	result, err = provider.Call(context.Background(), "read_file", map[string]any{"file_path": "relative.txt"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Text(), "must be absolute")
}
