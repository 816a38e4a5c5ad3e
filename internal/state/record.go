package state

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record is the persisted daemon record. The first line of the file is the
// pid on its own, so a bare pid file is a valid record too.
type Record struct {
	PID      int
	Method   string
	WindowID string
	Cookies  map[string]uint32
	Started  time.Time
}

// Marshal renders the record in its on-disk form.
func (r Record) Marshal() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d\n", r.PID)
	if r.Method != "" {
		fmt.Fprintf(&b, "method=%s\n", r.Method)
	}
	if r.WindowID != "" {
		fmt.Fprintf(&b, "window=%s\n", r.WindowID)
	}
	if len(r.Cookies) > 0 {
		names := make([]string, 0, len(r.Cookies))
		for name := range r.Cookies {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s:%d", name, r.Cookies[name]))
		}
		fmt.Fprintf(&b, "cookie=%s\n", strings.Join(pairs, ","))
	}
	if !r.Started.IsZero() {
		fmt.Fprintf(&b, "started=%s\n", r.Started.Format(time.RFC3339))
	}
	return b.Bytes()
}

// ParseRecord parses a record. Unknown keys are ignored.
func ParseRecord(data []byte) (Record, error) {
	var r Record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return r, errors.New("empty daemon record")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || pid <= 0 {
		return r, fmt.Errorf("invalid pid line %q in daemon record", scanner.Text())
	}
	r.PID = pid

	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "method":
			r.Method = value
		case "window":
			r.WindowID = value
		case "cookie":
			r.Cookies = parseCookies(value)
		case "started":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				r.Started = t
			}
		}
	}
	return r, scanner.Err()
}

func parseCookies(value string) map[string]uint32 {
	cookies := make(map[string]uint32)
	for _, pair := range strings.Split(value, ",") {
		name, raw, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		cookies[name] = uint32(n)
	}
	if len(cookies) == 0 {
		return nil
	}
	return cookies
}

// ReadRecord loads the record at path. A missing file yields ErrNotRunning.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, ErrNotRunning
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read daemon record: %w", err)
	}
	return ParseRecord(data)
}

// WriteRecord replaces the record at path atomically.
func WriteRecord(path string, r Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wakefull-record-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(r.Marshal()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write daemon record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write daemon record: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set record permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to install daemon record: %w", err)
	}
	return nil
}

// RemoveFile deletes path, treating a missing file as success.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Inspect reads the record and checks it against the live process table.
// It returns the record when it is backed by a live wakefull process,
// ErrNotRunning when there is no record, and ErrStaleRecord (after removing
// the record, and the lock file unless a process holds it) when the pid is
// dead, unrelated or unreadable.
// name is the expected process name; empty skips the name check.
func Inspect(p Paths, name string) (Record, error) {
	r, err := ReadRecord(p.Record)
	if errors.Is(err, ErrNotRunning) {
		return Record{}, ErrNotRunning
	}
	if err == nil && Alive(r.PID) && NameMatches(r.PID, name) {
		return r, nil
	}

	if rmErr := RemoveFile(p.Record); rmErr != nil {
		return r, fmt.Errorf("failed to remove stale record: %w", rmErr)
	}
	// A daemon that is still starting may hold the lock before its record
	// is current.
	if !Held(p.Lock) {
		if rmErr := RemoveFile(p.Lock); rmErr != nil {
			return r, fmt.Errorf("failed to remove stale lock file: %w", rmErr)
		}
	}
	if err != nil {
		return r, fmt.Errorf("%w: %v", ErrStaleRecord, err)
	}
	return r, fmt.Errorf("%w: pid %d", ErrStaleRecord, r.PID)
}
