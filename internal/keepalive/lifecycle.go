package keepalive

import (
	"errors"
	"time"

	"github.com/stigoleg/wakefull/internal/platform"
)

// State is the daemon lifecycle state.
type State int

const (
	StateNotRunning State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "not-running"
	}
}

// Status is a snapshot of the daemon published to observers.
type Status struct {
	State       State
	PID         int
	Method      platform.Method
	WindowID    string
	Cookies     map[string]uint32
	Started     time.Time
	LastRefresh time.Time
	Healthy     bool
	Restarts    int
	Err         error
}

var (
	// ErrAlreadyRunning means a live daemon already holds the record or lock.
	ErrAlreadyRunning = errors.New("wakefull is already running")

	// ErrStartFailed means the detached daemon did not come up.
	ErrStartFailed = errors.New("daemon failed to start")

	errRecordRemoved = errors.New("daemon record removed")
)
