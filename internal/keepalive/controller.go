package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
)

// startPollInterval is how often Start looks for the daemon's record.
const startPollInterval = 50 * time.Millisecond

// Controller implements the CLI side of the lifecycle: it inspects,
// launches and stops a daemon it does not own.
type Controller struct {
	Paths        state.Paths
	ProcessName  string // expected daemon process name; empty skips the check
	StartTimeout time.Duration
	StopTimeout  time.Duration
	Method       platform.Method // preferred method; MethodNone selects automatically

	// CheckMethod reports whether the daemon could inhibit anything here;
	// nil probes the live environment.
	CheckMethod func(platform.Method) error

	// Command is the daemon command line (executable first).
	Command []string

	Runner  platform.Runner
	Spawner platform.Spawner
}

func (c *Controller) runner() platform.Runner {
	if c.Runner == nil {
		return platform.ExecRunner{}
	}
	return c.Runner
}

// Status returns the live daemon's record. Stale records are removed and
// reported as state.ErrStaleRecord.
func (c *Controller) Status() (state.Record, error) {
	return state.Inspect(c.Paths, c.ProcessName)
}

// Start launches the daemon detached and waits for it to publish its
// record. ErrAlreadyRunning is returned with the existing record.
func (c *Controller) Start(ctx context.Context) (state.Record, error) {
	r, err := c.Status()
	if err == nil {
		return r, ErrAlreadyRunning
	}
	if errors.Is(err, state.ErrStaleRecord) {
		log.Printf("daemon: %v", err)
	} else if !errors.Is(err, state.ErrNotRunning) {
		return state.Record{}, err
	}
	if len(c.Command) == 0 {
		return state.Record{}, fmt.Errorf("%w: no daemon command configured", ErrStartFailed)
	}

	check := c.CheckMethod
	if check == nil {
		check = checkMethod
	}
	if err := check(c.Method); err != nil {
		return state.Record{}, err
	}

	spawner := c.Spawner
	if spawner == nil {
		spawner = platform.ExecSpawner{Detach: true}
	}
	proc, err := spawner.Spawn(ctx, c.Command[0], c.Command[1:]...)
	if err != nil {
		return state.Record{}, fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	timeout := c.StartTimeout
	if timeout <= 0 {
		timeout = platform.StartTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(startPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return state.Record{}, ctx.Err()
		case <-proc.Done():
			// A concurrent start may have won the lock.
			if r, err := c.Status(); err == nil && r.PID != proc.Pid() {
				return r, ErrAlreadyRunning
			}
			return state.Record{}, fmt.Errorf("%w: daemon exited during startup", ErrStartFailed)
		case <-deadline.C:
			return state.Record{}, fmt.Errorf("%w: no daemon record after %s", ErrStartFailed, timeout)
		case <-tick.C:
			r, err := state.ReadRecord(c.Paths.Record)
			if err == nil && r.PID == proc.Pid() && r.Method != "" {
				return r, nil
			}
		}
	}
}

// StopResult describes how a daemon was stopped.
type StopResult struct {
	Record state.Record
	Forced bool
}

// Stop terminates the daemon, escalating to SIGKILL after StopTimeout,
// then reverses anything it could not: leftover desktop settings, a
// still-suspended helper window, and the record and lock files.
// Without a live daemon it still restores leftover settings and returns
// state.ErrNotRunning or state.ErrStaleRecord.
func (c *Controller) Stop(ctx context.Context) (StopResult, error) {
	r, err := c.Status()
	if err != nil {
		if rerr := c.restoreLeftovers(ctx); rerr != nil {
			log.Printf("daemon: restoring leftover settings: %v", rerr)
		}
		return StopResult{}, err
	}

	timeout := c.StopTimeout
	if timeout <= 0 {
		timeout = platform.StopTimeout
	}
	forced, err := state.Terminate(r.PID, timeout)
	if err != nil {
		return StopResult{Record: r, Forced: forced}, err
	}

	var errs []error
	errs = append(errs, c.restoreLeftovers(ctx))
	if forced && r.WindowID != "" {
		errs = append(errs, resumeWindow(ctx, c.runner(), r.WindowID))
	}
	errs = append(errs, state.RemoveFile(c.Paths.Record), state.RemoveFile(c.Paths.Lock))
	return StopResult{Record: r, Forced: forced}, errors.Join(errs...)
}

func (c *Controller) restoreLeftovers(ctx context.Context) error {
	backup := state.NewBackup(c.Paths.Backup)
	if backup.Empty() {
		return nil
	}
	log.Printf("daemon: restoring desktop settings left by a previous daemon")
	return restoreSettings(ctx, c.runner(), backup)
}
