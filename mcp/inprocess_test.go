package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readRequest struct {
	FilePath string `mapstructure:"file_path"`
	Offset   int    `mapstructure:"offset"`
	Limit    int    `mapstructure:"limit"`
}

func (r *readRequest) Validate() error {
	if r.FilePath == "" {
		return errors.New("file_path is required")
	}
	return nil
}

func TestInProcessProviderCall(t *testing.T) {
	provider := NewInProcessProvider("local",
		Tool{
			Schema:  ToolSchema{Name: "ok"},
			Handler: func(ctx context.Context, args map[string]any) (string, error) { return "fine", nil },
		},
		Tool{
			Schema:  ToolSchema{Name: "fails"},
			Handler: func(ctx context.Context, args map[string]any) (string, error) { return "", errors.New("file not found") },
		},
		Tool{
			Schema:  ToolSchema{Name: "panics"},
			Handler: func(ctx context.Context, args map[string]any) (string, error) { panic("kaboom") },
		},
	)

	tests := []struct {
		name    string
		tool    string
		want    string
		isError bool
	}{
		{name: "success", tool: "ok", want: "fine"},
		{name: "handler error becomes error result", tool: "fails", want: "file not found", isError: true},
		{name: "panic becomes error result", tool: "panics", want: "panic: kaboom", isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := provider.Call(context.Background(), tt.tool, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.isError, result.IsError)
			assert.Equal(t, tt.want, result.Text())
		})
	}
}

func TestInProcessProviderUnknownTool(t *testing.T) {
	provider := NewInProcessProvider("local")

	_, err := provider.Call(context.Background(), "missing", nil)
	var notFound *ToolNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestInProcessProviderCancelledContext(t *testing.T) {
	provider := NewInProcessProvider("local", Tool{
		Schema: ToolSchema{Name: "write"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			t.Error("handler ran with a cancelled context")
			return "", nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Call(ctx, "write", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInProcessProviderClose(t *testing.T) {
	provider := NewInProcessProvider("local", Tool{
		Schema:  ToolSchema{Name: "ok"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) { return "fine", nil },
	})

	require.NoError(t, provider.Close())
	require.NoError(t, provider.Close())
	assert.False(t, provider.Available())

	_, err := provider.Call(context.Background(), "ok", nil)
	var unavailable *ProviderUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestInProcessProviderAddReplaces(t *testing.T) {
	provider := NewInProcessProvider("local")
	provider.Add(Tool{Schema: ToolSchema{Name: "x", Description: "old"}})
	provider.Add(Tool{Schema: ToolSchema{Name: "x", Description: "new"}})

	schemas, err := provider.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "new", schemas[0].Description)
}

func TestTypedHandler(t *testing.T) {
	var got readRequest
	handler := TypedHandler(func(ctx context.Context, req readRequest) (string, error) {
		got = req
		return req.FilePath, nil
	})

	t.Run("weakly typed strings decode into ints", func(t *testing.T) {
		out, err := handler(context.Background(), map[string]any{
			"file_path": "/tmp/a.txt",
			"offset":    "10",
			"limit":     "200",
		})
		require.NoError(t, err)
		assert.Equal(t, "/tmp/a.txt", out)
		assert.Equal(t, 10, got.Offset)
		assert.Equal(t, 200, got.Limit)
	})

	t.Run("validation runs after decoding", func(t *testing.T) {
		_, err := handler(context.Background(), map[string]any{"offset": "1"})
		assert.EqualError(t, err, "file_path is required")
	})

	t.Run("undecodable value", func(t *testing.T) {
		_, err := handler(context.Background(), map[string]any{"file_path": "/x", "offset": "ten"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid arguments")
	})
}
