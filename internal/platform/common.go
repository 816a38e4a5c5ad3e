package platform

import "github.com/stigoleg/wakefull/internal/util"

// HasCommand checks if a command is available in the system PATH.
// This is a convenience wrapper around util.HasCommand.
func HasCommand(name string) bool {
	return util.HasCommand(name)
}
