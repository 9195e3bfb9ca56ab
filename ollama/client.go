// Package ollama is a thin streaming client for a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "qwen3:8b"

	pingTimeout = 5 * time.Second
)

type Client struct {
	api     *api.Client
	model   string
	baseURL string
	opts    Options
}

// Options are sent with every chat request.
type Options struct {
	// ContextSize sets num_ctx. Zero keeps the server default.
	ContextSize int

	// Think enables the model's reasoning output for models that support it.
	Think bool
}

// StreamCallback receives each streamed message fragment. Thinking, content
// and tool calls arrive in separate fields of the fragment.
type StreamCallback func(fragment api.Message) error

func NewClient(baseURL, model string, opts Options) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		api:     api.NewClient(u, http.DefaultClient),
		model:   model,
		baseURL: baseURL,
		opts:    opts,
	}, nil
}

func (c *Client) GetModel() string { return c.model }

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) request(messages []api.Message, tools []api.Tool) *api.ChatRequest {
	stream := true
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   &stream,
		Think:    &api.ThinkValue{Value: c.opts.Think},
	}
	if c.opts.ContextSize > 0 {
		req.Options = map[string]any{"num_ctx": c.opts.ContextSize}
	}
	return req
}

// ChatWithTools streams one chat turn, handing every fragment to callback.
func (c *Client) ChatWithTools(ctx context.Context, messages []api.Message, tools []api.Tool, callback StreamCallback) error {
	return c.api.Chat(ctx, c.request(messages, tools), func(resp api.ChatResponse) error {
		if callback == nil {
			return nil
		}
		return callback(resp.Message)
	})
}

// Ping lists local models with a short timeout of its own.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.api.List(ctx); err != nil {
		return fmt.Errorf("ollama server at %s: %w", c.baseURL, err)
	}
	return nil
}

// HasModel reports whether the server has pulled the configured model. A
// model configured without a tag matches its ":latest" entry.
func (c *Client) HasModel(ctx context.Context) (bool, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list models: %w", err)
	}

	for _, m := range resp.Models {
		if m.Name == c.model || strings.TrimSuffix(m.Name, ":latest") == c.model {
			return true, nil
		}
	}
	return false, nil
}

// toolFamilies maps model name prefixes to tool calling support. Order
// matters: llama3.1 must be tried before the bare llama3 entry.
var toolFamilies = []struct {
	prefix string
	tools  bool
}{
	{"llama3.3", true},
	{"llama3.2", true},
	{"llama3.1", true},
	{"llama3-gradient", false},
	{"llama3", false},
	{"qwen", true},
	{"mistral", true},
	{"command-r", true},
	{"nemotron", true},
	{"granite3", true},
	{"gpt-oss", true},
	{"codellama", false},
	{"deepseek", false},
	{"phi", false},
	{"gemma", false},
}

// ModelSupportsToolCalling reports whether modelName belongs to a family known
// to handle tool calls. Unknown families report false.
func ModelSupportsToolCalling(modelName string) bool {
	name := strings.ToLower(modelName)
	for _, family := range toolFamilies {
		if strings.HasPrefix(name, family.prefix) {
			return family.tools
		}
	}
	return false
}
