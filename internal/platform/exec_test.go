//go:build unix

package platform

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if !HasCommand("sh") {
		t.Skip("sh not available")
	}
	r := ExecRunner{Timeout: 2 * time.Second}

	out, err := r.Run(context.Background(), "sh", "-c", "echo hello; echo oops >&2")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "oops")

	_, err = r.Run(context.Background(), "sh", "-c", "exit 3")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestExecRunnerTimeout(t *testing.T) {
	if !HasCommand("sleep") {
		t.Skip("sleep not available")
	}
	r := ExecRunner{Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSpawnTerminateGraceful(t *testing.T) {
	if !HasCommand("sleep") {
		t.Skip("sleep not available")
	}
	p, err := ExecSpawner{}.Spawn(context.Background(), "sleep", "30")
	require.NoError(t, err)
	assert.True(t, p.Alive())
	assert.Greater(t, p.Pid(), 0)

	require.NoError(t, p.Terminate(2*time.Second))
	assert.False(t, p.Alive())
}

func TestSpawnTerminateForcesKill(t *testing.T) {
	if !HasCommand("sh") {
		t.Skip("sh not available")
	}
	// The shell ignores SIGTERM, so Terminate must escalate.
	p, err := ExecSpawner{}.Spawn(context.Background(), "sh", "-c", "trap '' TERM; while true; do sleep 0.1; done")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Terminate(300*time.Millisecond))
	assert.False(t, p.Alive())
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}

func TestSpawnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecSpawner{}.Spawn(ctx, "sleep", "1")
	assert.ErrorIs(t, err, context.Canceled)
}
