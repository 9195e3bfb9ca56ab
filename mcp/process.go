package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"codingagent/config"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultCallTimeout      = 60 * time.Second
	DefaultCloseGrace       = 2 * time.Second

	clientName    = "codingagent"
	clientVersion = "1.0.0"
)

// ProcessOptions controls how a tool server process is started and stopped.
type ProcessOptions struct {
	AllowedLaunchers []string
	HandshakeTimeout time.Duration
	CallTimeout      time.Duration
	CloseGrace       time.Duration
}

func (o ProcessOptions) withDefaults() ProcessOptions {
	if o.AllowedLaunchers == nil {
		o.AllowedLaunchers = DefaultAllowedLaunchers
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.CloseGrace <= 0 {
		o.CloseGrace = DefaultCloseGrace
	}
	return o
}

// ProcessProvider owns a child process speaking MCP over its stdin/stdout.
type ProcessProvider struct {
	name    string
	opts    ProcessOptions
	client  *client.Client
	cmd     *exec.Cmd
	schemas []ToolSchema

	mu        sync.RWMutex
	available bool
	lastErr   error

	closeOnce sync.Once
	closeErr  error
}

// ConnectProcess validates the launch command, starts the child and performs
// the initialize / tools/list handshake. Any failure after validation yields a
// *ProviderUnavailableError and leaves no process behind.
func ConnectProcess(ctx context.Context, spec LaunchSpec, opts ProcessOptions) (*ProcessProvider, error) {
	opts = opts.withDefaults()

	if err := ValidateLaunch(spec, opts.AllowedLaunchers); err != nil {
		return nil, err
	}

	name := spec.Name
	if name == "" {
		name = launcherName(spec.Command)
	}

	p := &ProcessProvider{
		name: name,
		opts: opts,
	}

	if err := p.start(spec); err != nil {
		p.Close()
		return nil, &ProviderUnavailableError{Provider: name, Err: err}
	}

	hsCtx, cancel := context.WithTimeout(ctx, opts.HandshakeTimeout)
	defer cancel()

	if err := p.handshake(hsCtx); err != nil {
		p.Close()
		return nil, &ProviderUnavailableError{Provider: name, Err: err}
	}

	p.mu.Lock()
	p.available = true
	p.mu.Unlock()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Connected to '%s' with %d tools", name, len(p.schemas))
	}

	return p, nil
}

func (p *ProcessProvider) start(spec LaunchSpec) error {
	env := launchEnv(spec.Env)

	cmdFunc := func(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Env = env
		p.cmd = cmd

		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] Starting '%s': %s %v", p.name, command, args)
		}

		return cmd, nil
	}

	c, err := client.NewStdioMCPClientWithOptions(
		spec.Command,
		env,
		spec.Args,
		transport.WithCommandFunc(cmdFunc),
	)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", spec.Command, err)
	}
	p.client = c

	if p.cmd != nil && p.cmd.Process != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] '%s' running with PID %d", p.name, p.cmd.Process.Pid)
	}

	if stderr, ok := client.GetStderr(c); ok {
		go p.drainStderr(stderr)
	}

	return nil
}

func (p *ProcessProvider) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] %s stderr: %s", p.name, scanner.Text())
		}
	}
}

func (p *ProcessProvider) handshake(ctx context.Context) error {
	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: mcptypes.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    clientName,
				Version: clientVersion,
			},
		},
	}

	if _, err := p.client.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	toolsResult, err := p.client.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	p.schemas = SchemasFromMCPTools(toolsResult.Tools)
	return nil
}

func (p *ProcessProvider) Name() string {
	return p.name
}

// ListTools returns the schemas captured during the handshake.
func (p *ProcessProvider) ListTools(ctx context.Context) ([]ToolSchema, error) {
	out := make([]ToolSchema, len(p.schemas))
	copy(out, p.schemas)
	return out, nil
}

// Call sends one tools/call request and waits for its response or the call
// timeout. Transport failures and timeouts take the provider out of service.
func (p *ProcessProvider) Call(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error) {
	if !p.Available() {
		return nil, &ProviderUnavailableError{Provider: p.name, Err: p.lastError()}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()

	req := mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := p.client.CallTool(callCtx, req)
	switch {
	case err == nil:
		return convertCallResult(result), nil
	case ctx.Err() != nil:
		// the caller gave up; the server may still be healthy
		return nil, ctx.Err()
	case isTransportError(err):
		p.markUnavailable(err)
		return nil, &ProviderUnavailableError{Provider: p.name, Err: err}
	default:
		return nil, &ToolExecutionError{Name: name, Err: err}
	}
}

func (p *ProcessProvider) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.available
}

func (p *ProcessProvider) lastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *ProcessProvider) markUnavailable(err error) {
	p.mu.Lock()
	p.available = false
	if err != nil {
		p.lastErr = err
	}
	p.mu.Unlock()

	if err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] '%s' marked unavailable: %v", p.name, err)
	}
}

// Close asks the client to shut down, which closes the child's stdin, and
// kills the process if that has not finished within the grace period. Only
// the first call does any work.
func (p *ProcessProvider) Close() error {
	p.closeOnce.Do(func() {
		p.markUnavailable(errors.New("closed"))

		clientClosed := false
		if p.client != nil {
			closeDone := make(chan error, 1)
			go func() {
				closeDone <- p.client.Close()
			}()

			select {
			case err := <-closeDone:
				if err != nil {
					p.closeErr = fmt.Errorf("failed to close %s: %w", p.name, err)
				} else {
					clientClosed = true
				}
			case <-time.After(p.opts.CloseGrace):
				if config.DebugLog != nil {
					config.DebugLog.Printf("[MCP] Close timeout for '%s', killing process", p.name)
				}
			}
		}

		if !clientClosed && p.cmd != nil && p.cmd.Process != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] Killing '%s' (PID: %d)", p.name, p.cmd.Process.Pid)
			}
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[MCP] Error killing '%s': %v", p.name, err)
				}
			}
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] '%s' stopped", p.name)
		}
	})

	return p.closeErr
}

func isTransportError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EPIPE)
}

func convertCallResult(result *mcptypes.CallToolResult) *ToolCallResult {
	out := &ToolCallResult{IsError: result.IsError}
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcptypes.TextContent:
			out.Content = append(out.Content, TextBlock(c.Text))
		case *mcptypes.TextContent:
			out.Content = append(out.Content, TextBlock(c.Text))
		case mcptypes.ImageContent, *mcptypes.ImageContent:
			out.Content = append(out.Content, ContentBlock{Type: ContentImage})
		default:
			out.Content = append(out.Content, ContentBlock{Type: ContentOther})
		}
	}
	return out
}

// launchEnv starts from the current environment so PATH and friends survive,
// then applies the server's own variables.
func launchEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
