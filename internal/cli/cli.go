// Package cli is wakefull's command line front-end: it parses the action
// flags, loads configuration and drives the daemon or the controller.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/stigoleg/wakefull/internal/config"
	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 1 // also "already running" and "not running"
	ExitFailure = 2
)

const description = "Keep a Linux desktop from blanking, locking or suspending while it runs."

// exitError carries an exit code and whether the message was already
// printed.
type exitError struct {
	code    int
	err     error
	printed bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// silent wraps err for an exit code without printing it again.
func silent(code int, err error) error {
	return &exitError{code: code, err: err, printed: true}
}

// ExitCode maps an error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	var exitErr *exitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.code
	case errors.Is(err, config.ErrUsage),
		errors.Is(err, keepalive.ErrAlreadyRunning),
		errors.Is(err, state.ErrNotRunning),
		errors.Is(err, state.ErrStaleRecord):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// App holds what a command run writes to and how it finds itself.
type App struct {
	Version string
	Out     io.Writer
	Err     io.Writer

	// Interactive reports whether the dashboard may take over the terminal.
	Interactive func() bool
	// Executable is the binary --start re-executes as the daemon.
	Executable func() (string, error)
	// CheckMethod vets the environment before --start spawns the daemon;
	// nil probes the live environment.
	CheckMethod func(platform.Method) error
}

// NewApp returns an App bound to the process's stdio.
func NewApp(version string) *App {
	return &App{
		Version:     version,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: stdioIsTerminal,
		Executable:  os.Executable,
	}
}

func stdioIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func (a *App) styled() bool {
	f, ok := a.Err.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// NewRootCommand builds the wakefull command. All behavior hangs off
// action flags rather than subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	flags := &config.Flags{}
	cmd := &cobra.Command{
		Use:   platform.AppName + " [--start|--stop|--status|--diagnose|--foreground|--debug]",
		Short: description,
		Long: description + `

wakefull detects which of systemd-inhibit, xdg-screensaver with xset,
the session bus ScreenSaver/PowerManagement interfaces, or desktop
settings (XFCE xfconf, GNOME gsettings) are usable and keeps them
engaged from a background daemon until it is stopped.`,
		Example: `  wakefull --start           start the background daemon
  wakefull --status          show whether it runs and how
  wakefull --stop            stop it and restore settings
  wakefull --diagnose        show what this desktop supports
  wakefull -f --interval 1m  run in this terminal with a dashboard`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unexpected argument %q", config.ErrUsage, args[0])
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, flags)
		},
	}
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)
	flags.Register(cmd.Flags())
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	})
	return cmd
}

// Execute runs the root command with args and returns the exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	cmd := a.NewRootCommand()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	a.report(cmd, err)
	return ExitCode(err)
}

func (a *App) report(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) && exitErr.printed {
		return
	}
	if a.styled() {
		fmt.Fprintln(a.Err, config.FormatError(err))
	} else {
		fmt.Fprintf(a.Err, "%s: %v\n", platform.AppName, err)
	}
	if errors.Is(err, config.ErrUsage) {
		fmt.Fprintln(a.Err)
		fmt.Fprint(a.Err, cmd.UsageString())
	}
}

func (a *App) run(cmd *cobra.Command, flags *config.Flags) error {
	action, err := flags.Action()
	if err != nil {
		return err
	}
	if action == config.ActionVersion {
		fmt.Fprintf(a.Out, "%s version %s\n", platform.AppName, a.Version)
		return nil
	}

	cfg, err := config.Load(flags.ConfigFile, flags.Overrides())
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}

	toStderr := flags.Debug && action != config.ActionDaemon
	closeLog, err := setupLogging(cfg.LogFile, toStderr)
	if err != nil {
		fmt.Fprintf(a.Err, "%s: logging disabled: %v\n", platform.AppName, err)
	}
	defer closeLog()

	ctx := cmd.Context()
	switch action {
	case config.ActionStatus:
		return a.status(cfg)
	case config.ActionStart:
		return a.start(ctx, cfg, flags)
	case config.ActionStop:
		return a.stop(ctx, cfg)
	case config.ActionDiagnose:
		return a.diagnose(ctx)
	case config.ActionForeground:
		return a.foreground(ctx, cfg, !flags.Debug && a.Interactive())
	case config.ActionDaemon:
		return a.daemon(ctx, cfg)
	default:
		return fmt.Errorf("%w: unsupported action %s", config.ErrUsage, action)
	}
}
