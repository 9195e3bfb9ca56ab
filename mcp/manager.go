package mcp

import (
	"context"
	"sync"

	"codingagent/config"
)

// ConnectFailure records a tool server that could not be brought up.
type ConnectFailure struct {
	Spec LaunchSpec
	Err  error
}

// Manager connects configured tool servers and registers them, in order.
type Manager struct {
	registry *Registry
	opts     ProcessOptions
	checker  *LauncherChecker

	mu       sync.Mutex
	failures []ConnectFailure
}

func NewManager(registry *Registry, opts ProcessOptions) *Manager {
	return &Manager{
		registry: registry,
		opts:     opts,
		checker:  NewLauncherChecker(),
	}
}

// ConnectAll starts every server sequentially, so connection order matches
// configuration order and teardown runs in reverse. A server that fails is
// recorded and skipped; the remaining servers are still started.
func (m *Manager) ConnectAll(ctx context.Context, specs []LaunchSpec) []ConnectFailure {
	var failures []ConnectFailure

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			failures = append(failures, ConnectFailure{Spec: spec, Err: err})
			continue
		}

		if err := m.Connect(ctx, spec); err != nil {
			failures = append(failures, ConnectFailure{Spec: spec, Err: err})
		}
	}

	m.mu.Lock()
	m.failures = append(m.failures, failures...)
	m.mu.Unlock()

	return failures
}

// Connect starts one server and registers its tools. A provider that cannot
// be registered is closed before returning.
func (m *Manager) Connect(ctx context.Context, spec LaunchSpec) error {
	if launcher, err := m.checker.Check(spec.Command); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] Launcher check for '%s': %v", spec.Command, err)
		}
	} else if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Launcher %s %s at %s", launcher.Name, launcher.Version, launcher.Path)
	}

	provider, err := ConnectProcess(ctx, spec, m.opts)
	if err != nil {
		return err
	}

	if _, err := m.registry.Register(ctx, provider); err != nil {
		provider.Close()
		return err
	}

	return nil
}

func (m *Manager) Failures() []ConnectFailure {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ConnectFailure(nil), m.failures...)
}
