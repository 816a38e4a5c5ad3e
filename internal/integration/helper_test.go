package integration

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stigoleg/wakefull/internal/cli"
	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
)

const (
	helperEnv     = "WAKEFULL_TEST_DAEMON"
	stateDirEnv   = "WAKEFULL_TEST_STATE_DIR"
	ignoreTermEnv = "WAKEFULL_TEST_IGNORE_TERM"
)

// fakeStrategy stands in for a real inhibition method so the daemon
// lifecycle can run anywhere.
type fakeStrategy struct{}

func (fakeStrategy) Method() platform.Method { return platform.MethodDBus }
func (fakeStrategy) Start(context.Context) error { return nil }
func (fakeStrategy) Refresh(context.Context) error { return nil }
func (fakeStrategy) Alive() bool { return true }
func (fakeStrategy) Stop(time.Duration) error { return nil }
func (fakeStrategy) State() platform.StrategyState {
	return platform.StrategyState{Cookies: map[string]uint32{"screensaver": 42}}
}

// TestDaemonHelper is the daemon process the tests below launch. It does
// nothing when run directly.
func TestDaemonHelper(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	signals := cli.ShutdownSignals
	if os.Getenv(ignoreTermEnv) == "1" {
		signal.Ignore(syscall.SIGTERM)
		signals = []os.Signal{syscall.SIGINT, syscall.SIGHUP, syscall.SIGQUIT}
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	k := keepalive.New(keepalive.Options{
		Paths:           state.NewPaths(os.Getenv(stateDirEnv)),
		RefreshInterval: 100 * time.Millisecond,
		HealthInterval:  200 * time.Millisecond,
		StopTimeout:     time.Second,
		Factory: func(context.Context) (platform.Strategy, error) {
			return fakeStrategy{}, nil
		},
	})
	if err := k.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	os.Exit(0)
}

// newController returns a controller that launches TestDaemonHelper
// against a private state directory.
func newController(t *testing.T, ignoreTerm bool) *keepalive.Controller {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping daemon process test in short mode")
	}

	dir := t.TempDir()
	t.Setenv(helperEnv, "1")
	t.Setenv(stateDirEnv, dir)
	if ignoreTerm {
		t.Setenv(ignoreTermEnv, "1")
	} else {
		t.Setenv(ignoreTermEnv, "")
	}

	c := &keepalive.Controller{
		Paths:        state.NewPaths(dir),
		ProcessName:  state.ExecutableName(),
		StartTimeout: 5 * time.Second,
		StopTimeout:  time.Second,
		Command:      []string{os.Args[0], "-test.run=^TestDaemonHelper$"},
		CheckMethod:  func(platform.Method) error { return nil },
		Runner:       noopRunner{},
	}
	t.Cleanup(func() {
		if r, err := state.ReadRecord(c.Paths.Record); err == nil {
			_, _ = state.Terminate(r.PID, time.Second)
		}
	})
	return c
}

// noopRunner keeps the controller from running desktop tools during
// cleanup.
type noopRunner struct{}

func (noopRunner) Run(context.Context, string, ...string) (string, error) { return "", nil }

// waitGone polls until pid has exited and the state files are removed.
func waitGone(t *testing.T, c *keepalive.Controller, pid int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !state.Alive(pid) && !exists(c.Paths.Record) && !exists(c.Paths.Lock) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("daemon pid %d did not exit and clean up (alive=%v record=%v lock=%v)",
		pid, state.Alive(pid), exists(c.Paths.Record), exists(c.Paths.Lock))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
