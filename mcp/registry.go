package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codingagent/config"

	"github.com/sahilm/fuzzy"
)

// CollisionPolicy decides what happens when two providers advertise the same
// tool name.
type CollisionPolicy string

const (
	// CollisionShadow lets the later registration win.
	CollisionShadow CollisionPolicy = "shadow"
	// CollisionError rejects the later provider entirely.
	CollisionError CollisionPolicy = "error"
)

const maxSuggestions = 3

type registryEntry struct {
	schema   ToolSchema
	provider ToolProvider
}

// Registry maps tool names to the providers serving them. It is built during
// startup and only read afterwards, apart from Close.
type Registry struct {
	policy CollisionPolicy

	mu        sync.RWMutex
	providers []ToolProvider
	entries   []registryEntry
	routes    map[string]int
	closed    bool

	closeOnce sync.Once
	closeErr  error
}

func NewRegistry(policy CollisionPolicy) *Registry {
	if policy == "" {
		policy = CollisionShadow
	}
	return &Registry{
		policy: policy,
		routes: make(map[string]int),
	}
}

// Register reads the provider's tools once and adds them to the routing
// table. It returns the schemas that were registered.
func (r *Registry) Register(ctx context.Context, provider ToolProvider) ([]ToolSchema, error) {
	schemas, err := provider.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools of %s: %w", provider.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("registry closed")
	}

	if r.policy == CollisionError {
		seen := make(map[string]bool, len(schemas))
		for _, schema := range schemas {
			if i, ok := r.routes[schema.Name]; ok {
				return nil, &ToolCollisionError{
					Name:     schema.Name,
					Existing: r.entries[i].provider.Name(),
					Incoming: provider.Name(),
				}
			}
			if seen[schema.Name] {
				return nil, &ToolCollisionError{Name: schema.Name, Existing: provider.Name(), Incoming: provider.Name()}
			}
			seen[schema.Name] = true
		}
	}

	for _, schema := range schemas {
		entry := registryEntry{schema: schema, provider: provider}

		if i, ok := r.routes[schema.Name]; ok {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] Tool '%s' from '%s' shadows the one from '%s'",
					schema.Name, provider.Name(), r.entries[i].provider.Name())
			}
			r.entries[i] = entry
			continue
		}

		r.routes[schema.Name] = len(r.entries)
		r.entries = append(r.entries, entry)
	}

	r.providers = append(r.providers, provider)

	return schemas, nil
}

// Resolve returns the provider serving name.
func (r *Registry) Resolve(name string) (ToolProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.routes[name]
	if !ok {
		return nil, &ToolNotFoundError{Name: name, Suggestions: r.suggest(name)}
	}

	provider := r.entries[i].provider
	if !isAvailable(provider) {
		return nil, &ProviderUnavailableError{Provider: provider.Name()}
	}

	return provider, nil
}

func (r *Registry) suggest(name string) []string {
	names := make([]string, len(r.entries))
	for i, entry := range r.entries {
		names[i] = entry.schema.Name
	}

	matches := fuzzy.Find(name, names)
	var suggestions []string
	for _, match := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}

// AllSchemas returns the schemas to advertise, in registration order, leaving
// out tools whose provider is no longer available.
func (r *Registry) AllSchemas() []ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(r.entries))
	for _, entry := range r.entries {
		if isAvailable(entry.provider) {
			schemas = append(schemas, entry.schema)
		}
	}
	return schemas
}

// Names returns every registered tool name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, entry := range r.entries {
		names[i] = entry.schema.Name
	}
	return names
}

func (r *Registry) Providers() []ToolProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ToolProvider(nil), r.providers...)
}

// Close closes every provider in reverse registration order. Subsequent
// calls return the first call's result without touching the providers again.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		providers := append([]ToolProvider(nil), r.providers...)
		r.mu.Unlock()

		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] Closing %d providers", len(providers))
		}

		var errs []error
		for i := len(providers) - 1; i >= 0; i-- {
			if err := providers[i].Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", providers[i].Name(), err))
			}
		}
		r.closeErr = errors.Join(errs...)
	})

	return r.closeErr
}
