package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/stigoleg/wakefull/internal/config"
	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
	"github.com/stigoleg/wakefull/internal/ui"
)

func (a *App) controller(cfg *config.Config) *keepalive.Controller {
	return &keepalive.Controller{
		Paths:        cfg.Paths(),
		ProcessName:  state.ExecutableName(),
		StartTimeout: cfg.StartTimeout,
		StopTimeout:  cfg.StopTimeout,
		Method:       cfg.Method,
		CheckMethod:  a.CheckMethod,
		Runner:       platform.ExecRunner{Timeout: cfg.CommandTimeout},
	}
}

func recordRows(r state.Record) []ui.Row {
	rows := []ui.Row{
		{Label: "PID", Value: strconv.Itoa(r.PID)},
		{Label: "Method", Value: orDash(r.Method)},
	}
	if r.WindowID != "" {
		rows = append(rows, ui.Row{Label: "Window", Value: r.WindowID})
	}
	if len(r.Cookies) > 0 {
		rows = append(rows, ui.Row{Label: "Cookies", Value: ui.FormatCookies(r.Cookies)})
	}
	if !r.Started.IsZero() {
		rows = append(rows, ui.Row{Label: "Started", Value: r.Started.Format("2006-01-02 15:04:05")})
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// status never fails for a missing or stale daemon: both are answers.
func (a *App) status(cfg *config.Config) error {
	r, err := a.controller(cfg).Status()
	switch {
	case err == nil:
		fmt.Fprintln(a.Out, ui.Badge(true, "wakefull is running"))
		fmt.Fprintln(a.Out, ui.Rows(recordRows(r)...))
		return nil
	case errors.Is(err, state.ErrStaleRecord):
		fmt.Fprintln(a.Out, ui.Warn(fmt.Sprintf("removed stale daemon record (%v)", err)))
		fmt.Fprintln(a.Out, ui.Badge(false, "wakefull is not running"))
		return nil
	case errors.Is(err, state.ErrNotRunning):
		fmt.Fprintln(a.Out, ui.Badge(false, "wakefull is not running"))
		return nil
	default:
		return err
	}
}

// daemonCommand is the command line --start re-executes: this binary with
// the hidden daemon flag and the same modifiers.
func (a *App) daemonCommand(flags *config.Flags) ([]string, error) {
	exe, err := a.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot locate the wakefull executable: %w", err)
	}
	args := []string{exe, "--" + config.DaemonFlag}
	if flags.ConfigFile != "" {
		path, err := filepath.Abs(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		args = append(args, "--config", path)
	}
	if flags.Interval != "" {
		args = append(args, "--interval", flags.Interval)
	}
	return args, nil
}

func (a *App) start(ctx context.Context, cfg *config.Config, flags *config.Flags) error {
	command, err := a.daemonCommand(flags)
	if err != nil {
		return err
	}
	c := a.controller(cfg)
	c.Command = command

	r, err := c.Start(ctx)
	if errors.Is(err, keepalive.ErrAlreadyRunning) {
		fmt.Fprintln(a.Out, ui.Warn(fmt.Sprintf("wakefull is already running (pid %d)", r.PID)))
		return silent(ExitUsage, err)
	}
	if errors.Is(err, platform.ErrNoMethod) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w (see %s)", err, cfg.LogFile)
	}

	fmt.Fprintln(a.Out, ui.Badge(true, "wakefull started"))
	fmt.Fprintln(a.Out, ui.Rows(recordRows(r)...))
	return nil
}

func (a *App) stop(ctx context.Context, cfg *config.Config) error {
	res, err := a.controller(cfg).Stop(ctx)
	if errors.Is(err, state.ErrNotRunning) || errors.Is(err, state.ErrStaleRecord) {
		fmt.Fprintln(a.Out, ui.Badge(false, "wakefull is not running"))
		return silent(ExitUsage, err)
	}
	if res.Record.PID == 0 {
		return err
	}

	msg := fmt.Sprintf("wakefull stopped (pid %d)", res.Record.PID)
	if res.Forced {
		msg = fmt.Sprintf("wakefull killed after %s (pid %d)", cfg.StopTimeout, res.Record.PID)
	}
	fmt.Fprintln(a.Out, ui.Badge(true, msg))
	if err != nil {
		return fmt.Errorf("cleanup after stop was incomplete: %w", err)
	}
	return nil
}
