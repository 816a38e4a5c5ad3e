package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/wakefull/internal/config"
	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
)

type testApp struct {
	*App
	out, err *bytes.Buffer
	paths    state.Paths
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("WAKEFULL_STATE_DIR", filepath.Join(dir, "run"))

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testApp{
		App: &App{
			Version:     "1.2.3",
			Out:         out,
			Err:         errOut,
			Interactive: func() bool { return false },
			Executable:  func() (string, error) { return "", errors.New("no executable in tests") },
			CheckMethod: func(platform.Method) error { return nil },
		},
		out:   out,
		err:   errOut,
		paths: state.NewPaths(filepath.Join(dir, "run")),
	}
}

func (a *testApp) run(args ...string) int {
	return a.Execute(context.Background(), args)
}

func TestVersion(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, ExitOK, app.run("--version"))
	assert.Equal(t, "wakefull version 1.2.3\n", app.out.String())
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no action", nil},
		{"two actions", []string{"--start", "--stop"}},
		{"unknown flag", []string{"--frobnicate"}},
		{"positional argument", []string{"start"}},
		{"debug with status", []string{"--status", "--debug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			assert.Equal(t, ExitUsage, app.run(tt.args...))
			assert.Contains(t, app.err.String(), "Usage:")
		})
	}
}

func TestInvalidInterval(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, ExitUsage, app.run("--status", "--interval", "soon"))
	assert.Contains(t, app.err.String(), "invalid duration format")
	assert.NotContains(t, app.err.String(), "Usage:")
}

func TestStatusNotRunning(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, ExitOK, app.run("--status"))
	assert.Contains(t, app.out.String(), "not running")
}

func TestStatusStaleRecord(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.paths.Ensure())

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.NoError(t, state.WriteRecord(app.paths.Record, state.Record{PID: cmd.Process.Pid, Method: "dbus"}))

	assert.Equal(t, ExitOK, app.run("--status"))
	assert.Contains(t, app.out.String(), "stale")
	assert.Contains(t, app.out.String(), "not running")
	assert.NoFileExists(t, app.paths.Record)
}

func TestStatusRunning(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.paths.Ensure())
	require.NoError(t, state.WriteRecord(app.paths.Record, state.Record{
		PID:     os.Getpid(),
		Method:  "dbus",
		Cookies: map[string]uint32{"screensaver": 9},
		Started: time.Now(),
	}))

	assert.Equal(t, ExitOK, app.run("--status"))
	out := app.out.String()
	assert.Contains(t, out, "wakefull is running")
	assert.Contains(t, out, "dbus")
	assert.Contains(t, out, "screensaver=9")
	assert.FileExists(t, app.paths.Record)
}

func TestStopNotRunning(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, ExitUsage, app.run("--stop"))
	assert.Contains(t, app.out.String(), "not running")
	assert.Empty(t, app.err.String())
}

func TestStartAlreadyRunning(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.paths.Ensure())
	require.NoError(t, state.WriteRecord(app.paths.Record, state.Record{PID: os.Getpid(), Method: "systemd-inhibit"}))
	app.Executable = func() (string, error) { return "/bin/false", nil }

	assert.Equal(t, ExitUsage, app.run("-s"))
	assert.Contains(t, app.out.String(), "already running")
}

func TestStartWithoutExecutable(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, ExitFailure, app.run("--start"))
	assert.Contains(t, app.err.String(), "cannot locate")
}

func TestStartDaemonFails(t *testing.T) {
	app := newTestApp(t)
	app.Executable = func() (string, error) { return "/bin/false", nil }

	assert.Equal(t, ExitFailure, app.run("--start"))
	assert.Contains(t, app.err.String(), "daemon failed to start")
}

func TestStartNoMethod(t *testing.T) {
	app := newTestApp(t)
	t.Setenv("WAKEFULL_METHOD", "dbus")
	var preferred platform.Method
	app.CheckMethod = func(m platform.Method) error {
		preferred = m
		return fmt.Errorf("%w (display=none, desktop=unknown)", platform.ErrNoMethod)
	}
	app.Executable = func() (string, error) { return "/bin/false", nil }

	assert.Equal(t, ExitFailure, app.run("--start"))
	assert.Equal(t, platform.MethodDBus, preferred)
	assert.Contains(t, app.err.String(), "no usable inhibition method found")
	assert.NotContains(t, app.err.String(), "daemon failed to start")
	assert.NotContains(t, app.err.String(), ".log")
}

func TestDaemonCommand(t *testing.T) {
	app := newTestApp(t)
	app.Executable = func() (string, error) { return "/usr/bin/wakefull", nil }

	args, err := app.daemonCommand(&config.Flags{Start: true, ConfigFile: "/etc/wakefull.yaml", Interval: "45"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/wakefull", "--daemon", "--config", "/etc/wakefull.yaml", "--interval", "45"}, args)

	args, err = app.daemonCommand(&config.Flags{Start: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/wakefull", "--daemon"}, args)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{config.ErrUsage, ExitUsage},
		{keepalive.ErrAlreadyRunning, ExitUsage},
		{state.ErrNotRunning, ExitUsage},
		{state.ErrStaleRecord, ExitUsage},
		{platform.ErrNoMethod, ExitFailure},
		{keepalive.ErrStartFailed, ExitFailure},
		{errors.New("boom"), ExitFailure},
		{silent(ExitUsage, errors.New("printed")), ExitUsage},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
