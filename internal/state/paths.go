// Package state manages wakefull's on-disk bookkeeping: the daemon record
// (pid file), the advisory lock file and the desktop settings backup.
package state

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	recordName = "wakefull.pid"
	lockName   = "wakefull.lock"
	backupName = "backup"
)

// Paths groups every file wakefull keeps under its state directory.
type Paths struct {
	Dir    string
	Record string
	Lock   string
	Backup string
}

// NewPaths derives the file layout under dir.
func NewPaths(dir string) Paths {
	dir = filepath.Clean(dir)
	return Paths{
		Dir:    dir,
		Record: filepath.Join(dir, recordName),
		Lock:   filepath.Join(dir, lockName),
		Backup: filepath.Join(dir, backupName),
	}
}

// DefaultDir is $XDG_RUNTIME_DIR/wakefull, or a per-user directory in /tmp
// when no runtime directory is set.
func DefaultDir() string {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "wakefull")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("wakefull-%d", os.Getuid()))
}

// Ensure creates the state directory with owner-only permissions.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", p.Dir, err)
	}
	return nil
}
