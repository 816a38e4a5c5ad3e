package state

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stigoleg/wakefull/internal/platform"
)

// unsetMarker is stored for a key that had no value before wakefull set it.
const unsetMarker = "!unset"

// Backup is a directory holding one file per saved desktop setting.
type Backup struct {
	Dir string
}

var _ platform.SettingsBackup = (*Backup)(nil)

// NewBackup returns a backup rooted at dir. The directory is created lazily.
func NewBackup(dir string) *Backup {
	return &Backup{Dir: dir}
}

func fileName(s platform.Setting) string {
	return url.PathEscape(s.Tool + ":" + s.Channel + ":" + s.Key)
}

// Save writes a snapshot of s unless one already exists.
func (b *Backup) Save(s platform.Setting) error {
	if err := os.MkdirAll(b.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	content := unsetMarker
	if s.Existed {
		content = s.Value
	}

	path := filepath.Join(b.Dir, fileName(s))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create backup for %s: %w", s.Key, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write backup for %s: %w", s.Key, err)
	}
	return f.Close()
}

// Load returns every saved setting, sorted by file name. Files that do not
// decode are skipped.
func (b *Backup) Load() ([]platform.Setting, error) {
	entries, err := os.ReadDir(b.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var settings []platform.Setting
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, err := url.PathUnescape(e.Name())
		if err != nil {
			continue
		}
		parts := strings.SplitN(name, ":", 3)
		if len(parts) != 3 {
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.Dir, e.Name()))
		if err != nil {
			return settings, fmt.Errorf("failed to read backup %s: %w", name, err)
		}
		s := platform.Setting{Tool: parts[0], Channel: parts[1], Key: parts[2]}
		if value := string(data); value != unsetMarker {
			s.Value = value
			s.Existed = true
		}
		settings = append(settings, s)
	}
	return settings, nil
}

// Discard removes the snapshot of s and, once empty, the directory itself.
func (b *Backup) Discard(s platform.Setting) error {
	if err := RemoveFile(filepath.Join(b.Dir, fileName(s))); err != nil {
		return fmt.Errorf("failed to remove backup for %s: %w", s.Key, err)
	}
	if entries, err := os.ReadDir(b.Dir); err == nil && len(entries) == 0 {
		_ = os.Remove(b.Dir)
	}
	return nil
}

// Empty reports whether there is nothing left to restore.
func (b *Backup) Empty() bool {
	settings, err := b.Load()
	return err == nil && len(settings) == 0
}
