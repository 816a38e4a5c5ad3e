package state

import "errors"

var (
	// ErrNotRunning means no daemon record exists.
	ErrNotRunning = errors.New("wakefull is not running")

	// ErrStaleRecord means a record existed but its pid was dead or
	// belonged to another program. The record has been discarded.
	ErrStaleRecord = errors.New("stale daemon record discarded")

	// ErrLocked means another process holds the lock file.
	ErrLocked = errors.New("lock file is held by another process")
)
