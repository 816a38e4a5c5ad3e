package cli

import (
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/wakefull/internal/platform"
)

// setupLogging points the standard logger at stderr or at path. The
// returned func closes the log file; it is never nil. When the file
// cannot be opened logs are discarded.
func setupLogging(path string, toStderr bool) (func(), error) {
	if toStderr {
		log.SetOutput(os.Stderr)
		log.SetPrefix(platform.AppName + " ")
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}, err
	}
	f, err := tea.LogToFile(path, platform.AppName)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}, err
	}
	return func() { _ = f.Close() }, nil
}
