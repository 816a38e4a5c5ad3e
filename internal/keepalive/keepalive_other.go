//go:build !linux

package keepalive

import (
	"context"
	"fmt"
	"runtime"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
)

// Only Linux has inhibition strategies; elsewhere the daemon refuses to
// start unless a factory is injected.
func newStrategyFactory(Options, *state.Backup) StrategyFactory {
	return func(context.Context) (platform.Strategy, error) {
		return nil, fmt.Errorf("%w: unsupported platform %s", platform.ErrNoMethod, runtime.GOOS)
	}
}

func checkMethod(platform.Method) error {
	return fmt.Errorf("%w: unsupported platform %s", platform.ErrNoMethod, runtime.GOOS)
}

func restoreSettings(context.Context, platform.Runner, *state.Backup) error { return nil }

func resumeWindow(context.Context, platform.Runner, string) error { return nil }
