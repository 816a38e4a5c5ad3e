package integration

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/state"
)

// TestStartStatusStop walks the whole lifecycle the CLI drives.
func TestStartStatusStop(t *testing.T) {
	c := newController(t, false)
	ctx := context.Background()

	r, err := c.Start(ctx)
	require.NoError(t, err, "daemon should start")
	assert.NotEqual(t, os.Getpid(), r.PID)
	assert.Equal(t, "dbus", r.Method)
	assert.Equal(t, map[string]uint32{"screensaver": 42}, r.Cookies)
	assert.True(t, state.Held(c.Paths.Lock), "daemon should hold the lock")

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, r.PID, status.PID)

	again, err := c.Start(ctx)
	assert.ErrorIs(t, err, keepalive.ErrAlreadyRunning, "a second start must not launch another daemon")
	assert.Equal(t, r.PID, again.PID)

	res, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, res.Forced, "daemon should exit on SIGTERM")
	assert.Equal(t, r.PID, res.Record.PID)
	waitGone(t, c, r.PID)

	_, err = c.Status()
	assert.ErrorIs(t, err, state.ErrNotRunning)
}

// TestForcedStop verifies the SIGKILL fallback for a daemon that ignores
// SIGTERM.
func TestForcedStop(t *testing.T) {
	c := newController(t, true)
	ctx := context.Background()

	r, err := c.Start(ctx)
	require.NoError(t, err)

	res, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.True(t, res.Forced, "daemon ignoring SIGTERM should be killed")
	waitGone(t, c, r.PID)
}

// TestCleanupOnSignal verifies every shutdown signal removes the record
// and lock file.
func TestCleanupOnSignal(t *testing.T) {
	signals := []syscall.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

	for _, sig := range signals {
		t.Run(unix.SignalName(sig), func(t *testing.T) {
			c := newController(t, false)

			r, err := c.Start(context.Background())
			require.NoError(t, err)

			require.NoError(t, syscall.Kill(r.PID, sig))
			waitGone(t, c, r.PID)
		})
	}
}

// TestRecordRemovalStopsDaemon verifies deleting the record is a stop
// request.
func TestRecordRemovalStopsDaemon(t *testing.T) {
	c := newController(t, false)

	r, err := c.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(c.Paths.Record))
	waitGone(t, c, r.PID)
}

// TestStaleRecordRecovery verifies a record left by a dead process does
// not block a new start.
func TestStaleRecordRecovery(t *testing.T) {
	c := newController(t, false)
	require.NoError(t, c.Paths.Ensure())

	dead := exec.Command("true")
	require.NoError(t, dead.Run())
	require.NoError(t, state.WriteRecord(c.Paths.Record, state.Record{PID: dead.Process.Pid, Method: "systemd-inhibit"}))

	_, err := c.Status()
	assert.ErrorIs(t, err, state.ErrStaleRecord)
	assert.NoFileExists(t, c.Paths.Record)

	require.NoError(t, state.WriteRecord(c.Paths.Record, state.Record{PID: dead.Process.Pid, Method: "systemd-inhibit"}))
	r, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, dead.Process.Pid, r.PID)

	_, err = c.Stop(context.Background())
	require.NoError(t, err)
	waitGone(t, c, r.PID)
}

// TestStopWithoutDaemon verifies stop reports not running and leaves
// nothing behind.
func TestStopWithoutDaemon(t *testing.T) {
	c := newController(t, false)

	_, err := c.Stop(context.Background())
	assert.ErrorIs(t, err, state.ErrNotRunning)
	assert.NoFileExists(t, c.Paths.Record)
	assert.NoFileExists(t, c.Paths.Lock)
}
