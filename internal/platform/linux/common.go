//go:build linux

package linux

import (
	"context"
	"log"
	"strings"

	"github.com/stigoleg/wakefull/internal/platform"
)

// runBestEffort executes a command and logs any errors but does not return
// them. It reports whether the command succeeded.
func runBestEffort(ctx context.Context, r platform.Runner, name string, args ...string) bool {
	out, err := r.Run(ctx, name, args...)
	if err != nil {
		log.Printf("linux: best-effort command %s %s failed: %v (output: %q)", name, strings.Join(args, " "), err, out)
		return false
	}
	return true
}
