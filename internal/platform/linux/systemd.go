//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stigoleg/wakefull/internal/platform"
)

// inhibitorVerifyDelay is how long a freshly spawned child must survive
// before it counts as started.
const inhibitorVerifyDelay = 100 * time.Millisecond

// systemdInhibitArgs holds a block-mode idle, sleep and lid-switch lock
// until the child "sleep infinity" is killed.
var systemdInhibitArgs = []string{
	"--what=idle:sleep:handle-lid-switch",
	"--who=" + platform.AppName,
	"--why=Desktop idleness inhibited by " + platform.AppName,
	"--mode=block",
	"sleep", "infinity",
}

// SystemdStrategy holds a logind inhibitor lock through a systemd-inhibit
// child process.
type SystemdStrategy struct {
	spawner platform.Spawner
	proc    platform.Process
}

// NewSystemdStrategy returns a strategy that spawns children with sp.
func NewSystemdStrategy(sp platform.Spawner) *SystemdStrategy {
	return &SystemdStrategy{spawner: sp}
}

func (s *SystemdStrategy) Method() platform.Method { return platform.MethodSystemd }

func (s *SystemdStrategy) Start(ctx context.Context) error {
	if s.Alive() {
		return nil
	}

	proc, err := s.spawner.Spawn(ctx, toolSystemdInhibit, systemdInhibitArgs...)
	if err != nil {
		return fmt.Errorf("failed to start systemd-inhibit: %w", err)
	}

	select {
	case <-proc.Done():
		return errors.New("systemd-inhibit exited immediately; is logind running?")
	case <-ctx.Done():
		_ = proc.Terminate(platform.StopTimeout)
		return ctx.Err()
	case <-time.After(inhibitorVerifyDelay):
	}

	s.proc = proc
	log.Printf("linux: systemd-inhibit started successfully (pid %d)", proc.Pid())
	return nil
}

// Refresh is a no-op: the lock lasts as long as the child.
func (s *SystemdStrategy) Refresh(ctx context.Context) error { return nil }

func (s *SystemdStrategy) Alive() bool {
	return s.proc != nil && s.proc.Alive()
}

func (s *SystemdStrategy) Stop(timeout time.Duration) error {
	if s.proc == nil {
		return nil
	}
	proc := s.proc
	s.proc = nil
	if err := proc.Terminate(timeout); err != nil {
		return fmt.Errorf("failed to stop systemd-inhibit: %w", err)
	}
	log.Printf("linux: systemd-inhibit stopped")
	return nil
}

func (s *SystemdStrategy) State() platform.StrategyState {
	if s.proc == nil {
		return platform.StrategyState{}
	}
	return platform.StrategyState{ChildPID: s.proc.Pid()}
}
