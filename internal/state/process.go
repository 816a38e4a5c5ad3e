package state

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// commLen is the kernel's TASK_COMM_LEN minus the terminating NUL.
const commLen = 15

// pollInterval is how often Terminate re-checks a signalled pid.
const pollInterval = 50 * time.Millisecond

// Alive reports whether pid names a running, non-zombie process.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err != nil && !errors.Is(err, unix.EPERM) {
		return false
	}
	return !zombie(pid)
}

// zombie reads the state field of /proc/<pid>/stat. Without procfs the
// process is assumed not to be a zombie.
func zombie(pid int) bool {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	// The comm field is parenthesised and may contain spaces.
	i := bytes.LastIndexByte(data, ')')
	if i < 0 || i+2 >= len(data) {
		return false
	}
	return data[i+2] == 'Z'
}

// ProcessName returns the kernel's short name for pid.
func ProcessName(pid int) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// NameMatches reports whether pid runs a program called name. When the name
// cannot be read (no procfs) the check passes, matching the pid-only
// liveness test.
func NameMatches(pid int, name string) bool {
	if name == "" {
		return true
	}
	comm, err := ProcessName(pid)
	if err != nil {
		return true
	}
	if len(name) > commLen {
		name = name[:commLen]
	}
	return comm == name
}

// ExecutableName is the process name a daemon started from this binary has.
func ExecutableName() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}
	return filepath.Base(exe)
}

// Terminate sends SIGTERM to pid and waits up to timeout for it to exit,
// then sends SIGKILL. forced reports whether SIGKILL was needed.
func Terminate(pid int, timeout time.Duration) (forced bool, err error) {
	if !Alive(pid) {
		return false, nil
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return false, fmt.Errorf("failed to send SIGTERM to pid %d: %w", pid, err)
	}
	if waitExit(pid, timeout) {
		return false, nil
	}

	log.Printf("state: pid %d did not exit within %s, sending SIGKILL", pid, timeout)
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return true, fmt.Errorf("failed to send SIGKILL to pid %d: %w", pid, err)
	}
	if !waitExit(pid, timeout) {
		return true, fmt.Errorf("pid %d survived SIGKILL", pid)
	}
	return true, nil
}

func waitExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !Alive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}
