package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/wakefull/internal/config"
	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/ui"
)

func keeperOptions(cfg *config.Config) keepalive.Options {
	return keepalive.Options{
		Paths:            cfg.Paths(),
		RefreshInterval:  cfg.RefreshInterval,
		HealthInterval:   cfg.HealthInterval,
		StopTimeout:      cfg.StopTimeout,
		Method:           cfg.Method,
		SimulateActivity: cfg.SimulateActivity,
		Runner:           platform.ExecRunner{Timeout: cfg.CommandTimeout},
	}
}

// daemon is the detached process --start launches.
func (a *App) daemon(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, ShutdownSignals...)
	defer stop()

	log.Printf("daemon: pid %d, config %s, state %s", os.Getpid(), orDash(cfg.File), cfg.StateDir)
	err := keepalive.New(keeperOptions(cfg)).Run(ctx)
	if err != nil {
		log.Printf("daemon: exiting: %v", err)
		return err
	}
	log.Printf("daemon: stopped")
	return nil
}

// foreground runs the daemon in this process, with the dashboard when
// the terminal allows it.
func (a *App) foreground(ctx context.Context, cfg *config.Config, dashboard bool) error {
	ctx, stop := signal.NotifyContext(ctx, ShutdownSignals...)
	defer stop()

	k := keepalive.New(keeperOptions(cfg))
	if dashboard {
		return runDashboard(ctx, k)
	}

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		a.printTransitions(k.Updates())
	}()
	err := k.Run(ctx)
	<-printed
	return err
}

// printTransitions writes one line per lifecycle state change.
func (a *App) printTransitions(updates <-chan keepalive.Status) {
	last := keepalive.StateNotRunning
	for s := range updates {
		if s.State == last {
			continue
		}
		last = s.State
		switch s.State {
		case keepalive.StateRunning:
			fmt.Fprintln(a.Out, ui.Badge(true, fmt.Sprintf("wakefull running in the foreground (pid %d, method %s); Ctrl+C stops it", s.PID, s.Method)))
		case keepalive.StateStopping:
			fmt.Fprintln(a.Out, ui.Warn("stopping, restoring settings"))
		}
	}
}

func runDashboard(ctx context.Context, k *keepalive.Keeper) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- k.Run(ctx) }()

	p := tea.NewProgram(ui.NewModel(k.Updates(), cancel), tea.WithoutSignalHandler())
	if _, err := p.Run(); err != nil {
		cancel()
		log.Printf("daemon: dashboard failed: %v", err)
	}
	return <-errc
}
