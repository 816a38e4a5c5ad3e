//go:build unix

package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// waitDelay bounds how long Run waits for output pipes held open by
// grandchildren, such as the helper xdg-screensaver forks.
const waitDelay = 500 * time.Millisecond

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	// Timeout bounds every call; zero means CommandTimeout.
	Timeout time.Duration
}

// Run executes a command and returns the combined output (stdout+stderr) and any error.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("%s timed out after %s: %w", name, timeout, ctx.Err())
	}
	return strings.TrimSpace(buf.String()), err
}

// ExecSpawner implements Spawner. Children get their own process group so
// Terminate reaches grandchildren such as systemd-inhibit's "sleep".
type ExecSpawner struct {
	// Detach starts the child in a new session that outlives the caller,
	// with stdio on /dev/null. Used to daemonize.
	Detach bool
}

// Spawn starts name in the background. The context only guards the start;
// the child lives until Terminate is called or it exits on its own.
func (s ExecSpawner) Spawn(ctx context.Context, name string, args ...string) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(name, args...)
	if s.Detach {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	} else {
		cmd.SysProcAttr = childSysProcAttr()
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go p.wait()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) wait() {
	if err := p.cmd.Wait(); err != nil {
		log.Printf("process: %s (pid %d) exited: %v", p.cmd.Path, p.cmd.Process.Pid, err)
	}
	close(p.done)
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *execProcess) Terminate(timeout time.Duration) error {
	if !p.Alive() {
		return nil
	}
	if timeout <= 0 {
		timeout = StopTimeout
	}

	pid := p.Pid()
	if err := signalGroup(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to pid %d: %w", pid, err)
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(timeout):
	}

	log.Printf("process: pid %d still running %s after SIGTERM, sending SIGKILL", pid, timeout)
	if err := signalGroup(pid, unix.SIGKILL); err != nil {
		return fmt.Errorf("failed to send SIGKILL to pid %d: %w", pid, err)
	}
	<-p.done
	return nil
}

// signalGroup signals the whole process group, falling back to the single
// pid when the group is already gone.
func signalGroup(pid int, sig unix.Signal) error {
	err := unix.Kill(-pid, sig)
	if err == nil {
		return nil
	}
	err = unix.Kill(pid, sig)
	if err == nil || errors.Is(err, unix.ESRCH) || errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
