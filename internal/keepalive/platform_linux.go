//go:build linux

package keepalive

import (
	"context"
	"fmt"
	"log"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/platform/linux"
	"github.com/stigoleg/wakefull/internal/state"
)

// newStrategyFactory probes the environment on every call, so a restart
// after a health check failure sees tools installed or removed since.
func newStrategyFactory(opts Options, backup *state.Backup) StrategyFactory {
	return func(ctx context.Context) (platform.Strategy, error) {
		caps := linux.DetectCapabilities()
		log.Printf("daemon: environment: display=%s desktop=%s bus=%v", caps.DisplayServer, caps.DesktopEnvironment, caps.SessionBus)

		method := linux.SelectPreferred(opts.Method, caps)
		if opts.Method != platform.MethodNone && method != opts.Method {
			log.Printf("daemon: configured method %s is not usable here, using %s", opts.Method, method)
		}
		if method == platform.MethodNone {
			return nil, noMethodError(caps)
		}

		return linux.NewStrategy(method, caps, linux.Deps{
			Runner:           opts.Runner,
			Spawner:          opts.Spawner,
			Backup:           backup,
			SimulateActivity: opts.SimulateActivity,
		})
	}
}

// checkMethod runs the daemon's selection without starting anything.
func checkMethod(preferred platform.Method) error {
	caps := linux.DetectCapabilities()
	if linux.SelectPreferred(preferred, caps) == platform.MethodNone {
		return noMethodError(caps)
	}
	return nil
}

func noMethodError(caps linux.Capabilities) error {
	return fmt.Errorf("%w (display=%s, desktop=%s)", platform.ErrNoMethod, caps.DisplayServer, caps.DesktopEnvironment)
}

func restoreSettings(ctx context.Context, r platform.Runner, backup *state.Backup) error {
	return linux.RestoreSettings(ctx, r, backup)
}

func resumeWindow(ctx context.Context, r platform.Runner, windowID string) error {
	return linux.ResumeWindow(ctx, r, windowID)
}
