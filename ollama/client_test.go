package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelSupportsToolCalling(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"qwen3:8b", true},
		{"Qwen2.5-coder:7b", true},
		{"llama3.2:3b", true},
		{"llama3:8b", false},
		{"llama3-gradient", false},
		{"gemma2:9b", false},
		{"something-new", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ModelSupportsToolCalling(tt.model); got != tt.want {
				t.Errorf("ModelSupportsToolCalling(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestChatWithToolsSendsOptions(t *testing.T) {
	var got api.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		_ = enc.Encode(api.ChatResponse{Model: "qwen3:8b", Message: api.Message{Role: "assistant", Thinking: "hmm"}})
		_ = enc.Encode(api.ChatResponse{Model: "qwen3:8b", Message: api.Message{Role: "assistant", Content: "hi"}})
		_ = enc.Encode(api.ChatResponse{Model: "qwen3:8b", Done: true})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "qwen3:8b", Options{ContextSize: 32000, Think: true})
	require.NoError(t, err)

	var fragments []api.Message
	err = client.ChatWithTools(context.Background(), []api.Message{{Role: "user", Content: "hello"}}, nil, func(m api.Message) error {
		fragments = append(fragments, m)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "qwen3:8b", got.Model)
	assert.EqualValues(t, 32000, got.Options["num_ctx"])
	require.NotNil(t, got.Think)
	assert.Equal(t, true, got.Think.Value)

	require.GreaterOrEqual(t, len(fragments), 2)
	assert.Equal(t, "hmm", fragments[0].Thinking)
	assert.Equal(t, "hi", fragments[1].Content)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient("", "", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, client.GetModel())
	assert.Equal(t, DefaultHost, client.BaseURL())

	_, err = NewClient("://bad", "m", Options{})
	assert.Error(t, err)
}

func TestHasModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.ListResponse{Models: []api.ListModelResponse{
			{Name: "qwen3:8b"},
			{Name: "llama3.1:latest"},
		}})
	}))
	defer server.Close()

	tests := []struct {
		model string
		want  bool
	}{
		{"qwen3:8b", true},
		{"llama3.1", true},
		{"qwen3:14b", false},
	}
	for _, tt := range tests {
		client, err := NewClient(server.URL, tt.model, Options{})
		require.NoError(t, err)

		ok, err := client.HasModel(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, tt.model)
	}

	require.NoError(t, mustClient(t, server.URL).Ping(context.Background()))
}

func mustClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(url, "", Options{})
	require.NoError(t, err)
	return client
}
