package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/stigoleg/wakefull/internal/ui"
)

// Action is the one thing a wakefull invocation does.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionStop
	ActionStatus
	ActionDiagnose
	ActionForeground
	ActionDaemon
	ActionVersion
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionStatus:
		return "status"
	case ActionDiagnose:
		return "diagnose"
	case ActionForeground:
		return "foreground"
	case ActionDaemon:
		return "daemon"
	case ActionVersion:
		return "version"
	default:
		return "none"
	}
}

// ErrUsage marks invalid flag combinations.
var ErrUsage = errors.New("usage error")

// DaemonFlag is the hidden flag the detached daemon is started with.
const DaemonFlag = "daemon"

// Flags holds the parsed command line.
type Flags struct {
	Start      bool
	Stop       bool
	Status     bool
	Test       bool
	Diagnose   bool
	Foreground bool
	Debug      bool
	Daemon     bool
	Version    bool

	ConfigFile string
	Interval   string
}

// Register defines every flag on fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.Start, "start", "s", false, "Start the wakefull daemon in the background")
	fs.BoolVarP(&f.Stop, "stop", "t", false, "Stop the running daemon and restore settings")
	fs.BoolVar(&f.Status, "status", false, "Show whether the daemon is running")
	fs.BoolVar(&f.Test, "test", false, "Same as --diagnose")
	fs.BoolVar(&f.Diagnose, "diagnose", false, "Show detected environment and usable methods")
	fs.BoolVarP(&f.Foreground, "foreground", "f", false, "Run the daemon in this terminal")
	fs.BoolVar(&f.Debug, "debug", false, "Run in the foreground with logs on stderr")
	fs.BoolVarP(&f.Version, "version", "v", false, "Show version information")
	fs.BoolVar(&f.Daemon, DaemonFlag, false, "Run as the detached daemon (internal)")
	_ = fs.MarkHidden(DaemonFlag)

	fs.StringVar(&f.ConfigFile, "config", "", "Config file (default $XDG_CONFIG_HOME/wakefull/config.yaml)")
	fs.StringVar(&f.Interval, "interval", "", "Refresh interval, e.g. 30s or 45 (seconds)")
}

// Action returns the single requested action. --debug alone means a
// foreground run; combined with --foreground or the daemon flag it only
// changes where logs go.
func (f *Flags) Action() (Action, error) {
	var actions []Action
	add := func(set bool, a Action) {
		if set {
			actions = append(actions, a)
		}
	}
	add(f.Start, ActionStart)
	add(f.Stop, ActionStop)
	add(f.Status, ActionStatus)
	add(f.Test || f.Diagnose, ActionDiagnose)
	add(f.Foreground, ActionForeground)
	add(f.Daemon, ActionDaemon)
	add(f.Version, ActionVersion)

	switch {
	case len(actions) == 0 && f.Debug:
		return ActionForeground, nil
	case len(actions) == 0:
		return ActionNone, fmt.Errorf("%w: no action given", ErrUsage)
	case len(actions) > 1:
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = a.String()
		}
		return ActionNone, fmt.Errorf("%w: only one action allowed, got %s", ErrUsage, strings.Join(names, ", "))
	}

	a := actions[0]
	if f.Debug && a != ActionForeground && a != ActionDaemon {
		return ActionNone, fmt.Errorf("%w: --debug only applies to a foreground run", ErrUsage)
	}
	return a, nil
}

// Overrides maps command line modifiers onto config keys for Load.
func (f *Flags) Overrides() map[string]string {
	overrides := make(map[string]string)
	if f.Interval != "" {
		overrides[KeyRefreshInterval] = f.Interval
	}
	return overrides
}

// FormatError renders err for the terminal. Multi-paragraph errors such as
// duration format help get a bordered box.
func FormatError(err error) string {
	msg := err.Error()
	parts := strings.SplitN(msg, "\n\n", 2)
	if len(parts) != 2 {
		return ui.Current.Error.Render(msg)
	}

	errorBox := ui.Current.Help.
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#FF4040"))

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF4040")).
		Render(parts[0])

	details := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#999999")).
		Render(parts[1])

	return errorBox.Render(fmt.Sprintf("%s\n\n%s", header, details))
}
