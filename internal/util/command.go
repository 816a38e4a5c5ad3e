package util

import "os/exec"

// HasCommand checks if a command is available in the system PATH.
func HasCommand(name string) bool {
	return CommandPath(name) != ""
}

// CommandPath returns the resolved path of name, or "" when it is not on PATH.
func CommandPath(name string) string {
	if name == "" {
		return ""
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
