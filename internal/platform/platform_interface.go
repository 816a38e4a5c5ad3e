// Package platform defines the inhibition methods wakefull can use and the
// abstractions it uses to drive external tools.
package platform

import (
	"context"
	"time"
)

// Strategy is one running inhibition method. The daemon owns a single
// Strategy at a time and drives it from its supervising loop.
type Strategy interface {
	// Method reports which inhibition method this strategy implements.
	Method() Method

	// Start applies the inhibition for the first time. It fails only when
	// nothing at all could be applied.
	Start(ctx context.Context) error

	// Refresh re-applies the inhibition. Individual command failures are
	// logged by the strategy and not returned.
	Refresh(ctx context.Context) error

	// Alive reports whether the resource backing the inhibition (child
	// process, bus connection, helper window) is still usable.
	Alive() bool

	// Stop releases the inhibition and reverses any changed settings.
	// A child that ignores the graceful signal for timeout is killed.
	Stop(timeout time.Duration) error

	// State returns the identifiers that must be persisted so a later
	// process can reverse the inhibition.
	State() StrategyState
}

// StrategyState holds the opaque handles a strategy hands out.
type StrategyState struct {
	// WindowID is the X11 helper window id in 0x%x form.
	WindowID string

	// Cookies maps a D-Bus service short name to its inhibit cookie.
	Cookies map[string]uint32

	// ChildPID is the pid of the supervised child process, if any.
	ChildPID int
}

// Runner runs an external command to completion.
type Runner interface {
	// Run executes name with args and returns the combined, trimmed output.
	// A non-zero exit status is reported as an *exec.ExitError.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Spawner starts long-lived child processes.
type Spawner interface {
	Spawn(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a supervised child process.
type Process interface {
	Pid() int
	Alive() bool
	Done() <-chan struct{}

	// Terminate sends SIGTERM to the child's process group, waits up to
	// timeout and then sends SIGKILL.
	Terminate(timeout time.Duration) error
}

// Setting is one desktop setting saved before wakefull changed it.
type Setting struct {
	Tool    string
	Channel string
	Key     string
	Value   string
	Existed bool
}

// SettingsBackup persists settings snapshots across processes.
type SettingsBackup interface {
	// Save records s unless a snapshot for the same key already exists,
	// so the first (pre-wakefull) value always wins.
	Save(s Setting) error
	Load() ([]Setting, error)
	Discard(s Setting) error
}
