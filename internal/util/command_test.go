package util

import (
	"path/filepath"
	"testing"
)

func TestHasCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		expected bool
	}{
		{
			name:     "common command exists - sh",
			command:  "sh",
			expected: true,
		},
		{
			name:     "nonexistent command",
			command:  "wakefull-this-command-does-not-exist-12345",
			expected: false,
		},
		{
			name:     "empty string",
			command:  "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasCommand(tt.command)
			if got != tt.expected {
				t.Errorf("HasCommand(%q) = %v, want %v", tt.command, got, tt.expected)
			}
		})
	}
}

func TestCommandPath(t *testing.T) {
	path := CommandPath("sh")
	if path == "" {
		t.Skip("sh not on PATH")
	}
	if !filepath.IsAbs(path) {
		t.Errorf("CommandPath(sh) = %q, want an absolute path", path)
	}
	if got := CommandPath("wakefull-missing-tool"); got != "" {
		t.Errorf("CommandPath(missing) = %q, want empty", got)
	}
}
