package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"codingagent/config"
	"codingagent/mcp"
	"codingagent/model"
	"codingagent/ollama"
	"codingagent/provider"
	"codingagent/storage"
	"codingagent/tools"
	"codingagent/ui"

	"github.com/charmbracelet/x/term"
)

const (
	pingTimeout   = 10 * time.Second
	noThinkSuffix = " \\nothink"
	thinkMarker   = "\\think"
)

// session holds everything that lives for one REPL run.
type session struct {
	cfg          *config.Config
	modelName    string
	providerType provider.ProviderType
	registry     *mcp.Registry
	orchestrator *model.Orchestrator
	console      *ui.Console
	prompt       *ui.Prompt
	audit        *storage.AuditLog
}

func runSession(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	width, markdown := 80, false
	if term.IsTerminal(os.Stdout.Fd()) {
		markdown = true
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = w
		}
	}
	console := ui.NewConsole(os.Stdout, width, markdown)

	// SIGINT must never take the default exit path, or connected tool
	// servers would be left running. Outside startup and queries it is
	// dropped; the prompt sees ctrl+c as a key.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	startCtx, interrupted, stopStartup := startupContext(ctx, interrupts)
	s, err := newSession(startCtx, cfg, console)
	stopStartup()
	if s != nil {
		defer s.close()
	}
	if interrupted() {
		console.OnNotice("Interrupted.")
		return 1
	}
	if err != nil {
		console.Error(err)
		return 1
	}

	if err := s.repl(ctx); err != nil {
		console.Error(err)
		return 1
	}
	return 0
}

// startupContext is cancelled by the first signal on interrupts. stop
// detaches it from interrupts once startup is over.
func startupContext(parent context.Context, interrupts <-chan os.Signal) (context.Context, func() bool, func()) {
	ctx, cancel := context.WithCancel(parent)
	var hit atomic.Bool
	done := make(chan struct{})

	go func() {
		defer close(done)
		select {
		case <-interrupts:
			hit.Store(true)
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		cancel()
		<-done
	}
	return ctx, hit.Load, stop
}

func newSession(ctx context.Context, cfg *config.Config, console *ui.Console) (*session, error) {
	providerType := provider.MapProviderIDToType(cfg.Provider)

	baseURL := cfg.InferenceURL
	if providerType != provider.ProviderTypeOllama && baseURL == ollama.DefaultHost {
		// the default points at Ollama; let hosted providers use their own
		baseURL = ""
	}

	prov, err := provider.NewProvider(provider.Config{
		Type:        providerType,
		BaseURL:     baseURL,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		ContextSize: cfg.ContextSize,
		Think:       cfg.Think,
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = prov.Ping(pingCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("inference server not reachable: %w", err)
	}

	if op, ok := prov.(*provider.OllamaProvider); ok {
		checkOllamaModel(ctx, op, console)
	}

	s := &session{
		cfg:          cfg,
		modelName:    prov.GetModel(),
		providerType: providerType,
		registry:     mcp.NewRegistry(mcp.CollisionPolicy(cfg.CollisionPolicy)),
		console:      console,
		prompt:       ui.NewPrompt(os.Stdin, os.Stdout),
	}

	if cfg.AuditLog {
		audit, err := storage.NewAuditLog(cfg.DataDir(), prov.GetModel())
		if err != nil {
			console.OnNotice(fmt.Sprintf("Audit log disabled: %v", err))
		} else {
			s.audit = audit
		}
	}

	systemPrompt := buildSystemPrompt(cfg.SystemPrompt)
	opts := model.Options{
		MaxRounds:     cfg.MaxRounds,
		ParallelTools: cfg.ParallelTools,
		LoopWindow:    cfg.LoopWindow,
		Observer:      console,
	}
	if s.audit != nil {
		opts.Recorder = s.audit
	}

	// builtins go first so configured tool servers can shadow them
	builtins := mcp.NewInProcessProvider(tools.ProviderName)
	if cfg.BuiltinTools {
		for _, tool := range tools.All() {
			builtins.Add(tool)
		}
	}
	builtins.Add(model.NewSubAgentTool(prov, s.registry, systemPrompt, opts))
	if _, err := s.registry.Register(ctx, builtins); err != nil {
		return s, err
	}

	manager := mcp.NewManager(s.registry, mcp.ProcessOptions{
		AllowedLaunchers: cfg.Launchers.Allowed,
		HandshakeTimeout: cfg.HandshakeTimeout(),
		CallTimeout:      cfg.CallTimeout(),
		CloseGrace:       cfg.CloseGrace(),
	})
	for _, failure := range manager.ConnectAll(ctx, launchSpecs(cfg.ToolServers)) {
		console.OnNotice(fmt.Sprintf("Tool server %s unavailable: %v", failure.Spec.Name, failure.Err))
	}

	s.orchestrator = model.NewOrchestrator(prov, s.registry, model.NewConversation(systemPrompt), opts)
	return s, nil
}

func checkOllamaModel(ctx context.Context, p *provider.OllamaProvider, console *ui.Console) {
	if !p.SupportsToolCalling() {
		console.OnNotice(fmt.Sprintf("Model %s is not known to support tool calling; tools may be ignored.", p.GetModel()))
	}
	if ok, err := p.HasModel(ctx); err == nil && !ok {
		console.OnNotice(fmt.Sprintf("Model %s is not pulled yet. Run: ollama pull %s", p.GetModel(), p.GetModel()))
	}
}

func launchSpecs(servers []config.ToolServerConfig) []mcp.LaunchSpec {
	specs := make([]mcp.LaunchSpec, len(servers))
	for i, server := range servers {
		specs[i] = mcp.LaunchSpec{
			Name:    server.Name,
			Command: server.Command,
			Args:    server.Args,
			Env:     server.Env,
		}
	}
	return specs
}

func buildSystemPrompt(base string) string {
	if base == "" {
		base = config.DefaultSystemPrompt
	}
	wd, err := os.Getwd()
	if err != nil {
		return base
	}
	return fmt.Sprintf("%s\n\nThe current working directory is %s. Use absolute paths with tools.", base, wd)
}

// decorateQuery disables Qwen-style reasoning unless it was asked for.
func decorateQuery(query string, providerType provider.ProviderType, think bool) string {
	if providerType != provider.ProviderTypeOllama || think || strings.Contains(query, thinkMarker) {
		return query
	}
	return query + noThinkSuffix
}

func (s *session) repl(ctx context.Context) error {
	wd, _ := os.Getwd()
	s.console.Println(ui.Banner(s.modelName, len(s.orchestrator.Schemas()), wd))

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.prompt.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case line == "":
			continue
		case line == "/exit":
			return nil
		case line == "/tools":
			s.console.Tools(s.orchestrator.Schemas())
			continue
		case line == "/copy":
			s.copyLastReply()
			continue
		}

		s.submit(ctx, decorateQuery(line, s.providerType, s.cfg.Think))
	}
}

// submit runs one query. Ctrl+C cancels the query, not the session.
func (s *session) submit(ctx context.Context, query string) {
	queryCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := s.orchestrator.Submit(queryCtx, query)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		s.console.OnNotice("Interrupted.")
	default:
		s.console.Error(err)
	}
}

func (s *session) copyLastReply() {
	msg, ok := s.orchestrator.Conversation().Last(model.RoleAssistant)
	if !ok {
		s.console.OnNotice("Nothing to copy yet.")
		return
	}
	if err := ui.CopyToClipboard(msg.Content); err != nil {
		s.console.Error(err)
		return
	}
	s.console.OnNotice("Copied last reply to clipboard.")
}

// close tears down in reverse order of construction. Registry.Close closes
// each provider once, last connected first.
func (s *session) close() {
	if s.orchestrator != nil {
		s.orchestrator.Close()
	}
	if err := s.registry.Close(); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Error closing providers: %v", err)
	}
	if s.audit != nil {
		if err := s.audit.Close(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to close audit log: %v", err)
		}
	}
}
