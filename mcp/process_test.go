package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessProviderHandshakeAndCall(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a child process")
	}

	spec, opts := helperSpec("serve")
	ctx := context.Background()

	provider, err := ConnectProcess(ctx, spec, opts)
	require.NoError(t, err)
	defer provider.Close()

	assert.True(t, provider.Available())

	schemas, err := provider.ListTools(ctx)
	require.NoError(t, err)
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	assert.ElementsMatch(t, []string{"echo", "fail", "slow"}, names)

	result, err := provider.Call(ctx, "echo", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "hello", result.Text())

	result, err = provider.Call(ctx, "fail", nil)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Text(), "no such file")
}

func TestProcessProviderCloseIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a child process")
	}

	spec, opts := helperSpec("serve")
	provider, err := ConnectProcess(context.Background(), spec, opts)
	require.NoError(t, err)

	first := provider.Close()
	second := provider.Close()
	assert.Equal(t, first, second)
	assert.False(t, provider.Available())

	_, err = provider.Call(context.Background(), "echo", map[string]any{"text": "x"})
	var unavailable *ProviderUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestProcessProviderChildExitsBeforeHandshake(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a child process")
	}

	spec, opts := helperSpec("exit")
	opts.HandshakeTimeout = 2 * time.Second

	reg := NewRegistry(CollisionShadow)
	manager := NewManager(reg, opts)

	failures := manager.ConnectAll(context.Background(), []LaunchSpec{spec})
	require.Len(t, failures, 1)

	var unavailable *ProviderUnavailableError
	assert.ErrorAs(t, failures[0].Err, &unavailable)
	assert.Empty(t, reg.AllSchemas())
	assert.Empty(t, reg.Providers())
	assert.Len(t, manager.Failures(), 1)
}

func TestProcessProviderCallTimeoutTakesProviderOutOfService(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a child process")
	}

	spec, opts := helperSpec("serve")
	opts.CallTimeout = 300 * time.Millisecond

	reg := NewRegistry(CollisionShadow)
	manager := NewManager(reg, opts)
	require.Empty(t, manager.ConnectAll(context.Background(), []LaunchSpec{spec}))
	defer reg.Close()

	provider, err := reg.Resolve("slow")
	require.NoError(t, err)

	_, err = provider.Call(context.Background(), "slow", nil)
	var unavailable *ProviderUnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, err = reg.Resolve("echo")
	assert.ErrorAs(t, err, &unavailable)
	assert.Empty(t, reg.AllSchemas())
}

func TestConnectProcessRejectsLauncher(t *testing.T) {
	_, err := ConnectProcess(context.Background(), LaunchSpec{Name: "shell", Command: "/bin/sh", Args: []string{"-c", "true"}}, ProcessOptions{})

	var rejected *LaunchRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "/bin/sh", rejected.Command)
}
