//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stigoleg/wakefull/internal/platform"
)

// XDGOptions configures an XDGStrategy.
type XDGOptions struct {
	Display string

	// Xset and Xdotool say whether those tools may be called.
	Xset    bool
	Xdotool bool

	// SimulateActivity taps shift through xdotool on every refresh.
	SimulateActivity bool
}

// XDGStrategy suspends the screensaver for a helper window through
// xdg-screensaver and keeps X11 blanking and DPMS off with xset.
type XDGStrategy struct {
	runner platform.Runner
	open   windowOpener
	opts   XDGOptions
	win    helperWindow
}

// NewXDGStrategy returns a strategy that opens a real X11 helper window.
func NewXDGStrategy(r platform.Runner, opts XDGOptions) *XDGStrategy {
	return &XDGStrategy{runner: r, open: openX11Window, opts: opts}
}

func (x *XDGStrategy) Method() platform.Method { return platform.MethodXDG }

func (x *XDGStrategy) Start(ctx context.Context) error {
	if x.win != nil {
		return nil
	}

	win, err := x.open(x.opts.Display)
	if err != nil {
		return err
	}

	suspended := runBestEffort(ctx, x.runner, toolXDGScreensaver, "suspend", win.ID())
	blanking := x.applyX11(ctx)
	if !suspended && !blanking {
		_ = win.Close()
		return errors.New("xdg-screensaver suspend failed and xset could not disable blanking")
	}
	x.win = win
	if suspended {
		log.Printf("linux: xdg-screensaver suspended for window %s", win.ID())
	} else {
		log.Printf("linux: xdg-screensaver suspend failed, relying on xset")
	}
	return nil
}

func (x *XDGStrategy) Refresh(ctx context.Context) error {
	if x.win == nil {
		return nil
	}
	runBestEffort(ctx, x.runner, toolXDGScreensaver, "suspend", x.win.ID())
	x.applyX11(ctx)
	return nil
}

// applyX11 turns off X11 blanking and DPMS and optionally nudges the idle
// timer with a shift tap. It reports whether any xset call succeeded.
func (x *XDGStrategy) applyX11(ctx context.Context) bool {
	applied := false
	if x.opts.Xset {
		for _, args := range [][]string{{"s", "off"}, {"-dpms"}, {"s", "noblank"}} {
			if runBestEffort(ctx, x.runner, toolXset, args...) {
				applied = true
			}
		}
	}
	if x.opts.SimulateActivity && x.opts.Xdotool {
		runBestEffort(ctx, x.runner, toolXdotool, "key", "shift")
	}
	return applied
}

func (x *XDGStrategy) Alive() bool {
	return x.win != nil && x.win.Alive()
}

func (x *XDGStrategy) Stop(timeout time.Duration) error {
	if x.win == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout+platform.CommandTimeout)
	defer cancel()

	win := x.win
	x.win = nil
	runBestEffort(ctx, x.runner, toolXDGScreensaver, "resume", win.ID())
	if x.opts.Xset {
		runBestEffort(ctx, x.runner, toolXset, "s", "on")
		runBestEffort(ctx, x.runner, toolXset, "+dpms")
	}
	if err := win.Close(); err != nil {
		return err
	}
	log.Printf("linux: xdg-screensaver resumed for window %s", win.ID())
	return nil
}

func (x *XDGStrategy) State() platform.StrategyState {
	if x.win == nil {
		return platform.StrategyState{}
	}
	return platform.StrategyState{WindowID: x.win.ID()}
}

// ResumeWindow undoes a suspend left behind by a daemon that was killed
// before it could resume its own window.
func ResumeWindow(ctx context.Context, r platform.Runner, windowID string) error {
	if windowID == "" {
		return nil
	}
	if out, err := r.Run(ctx, toolXDGScreensaver, "resume", windowID); err != nil {
		return fmt.Errorf("failed to resume screensaver for window %s (output: %q): %w", windowID, out, err)
	}
	return nil
}
