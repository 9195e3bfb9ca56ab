package mcp

import (
	"fmt"
	"strings"
)

// ToolNotFoundError is returned when no registered provider serves a tool name.
type ToolNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *ToolNotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("tool %q not found (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("tool %q not found", e.Name)
}

// ToolExecutionError wraps a failure raised while a provider executed a tool.
type ToolExecutionError struct {
	Name string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Name, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// ProviderUnavailableError reports a provider that cannot serve calls: the
// handshake failed, the child process died, or a call timed out.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s unavailable", e.Provider)
	}
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// LaunchRejectedError is returned when a tool server command is not on the
// launcher allow-list.
type LaunchRejectedError struct {
	Command string
	Allowed []string
}

func (e *LaunchRejectedError) Error() string {
	return fmt.Sprintf("launcher %q is not allowed (allowed: %s)", e.Command, strings.Join(e.Allowed, ", "))
}

// ToolCollisionError is returned by a registry using CollisionError when two
// providers advertise the same tool name.
type ToolCollisionError struct {
	Name     string
	Existing string
	Incoming string
}

func (e *ToolCollisionError) Error() string {
	return fmt.Sprintf("tool %q from provider %s collides with provider %s", e.Name, e.Incoming, e.Existing)
}
