//go:build linux

package linux

import (
	"fmt"

	"github.com/stigoleg/wakefull/internal/platform"
)

// Deps carries what the strategies need from the daemon.
type Deps struct {
	Runner           platform.Runner
	Spawner          platform.Spawner
	Backup           platform.SettingsBackup
	SimulateActivity bool
}

// NewStrategy builds the strategy implementing m under caps.
func NewStrategy(m platform.Method, caps Capabilities, deps Deps) (platform.Strategy, error) {
	switch m {
	case platform.MethodSystemd:
		return NewSystemdStrategy(deps.Spawner), nil
	case platform.MethodXDG:
		return NewXDGStrategy(deps.Runner, XDGOptions{
			Display:          caps.Display,
			Xset:             caps.Xset,
			Xdotool:          caps.Xdotool,
			SimulateActivity: deps.SimulateActivity,
		}), nil
	case platform.MethodDBus:
		return NewDBusStrategy(deps.Runner, caps), nil
	case platform.MethodDesktopSettings:
		return NewSettingsStrategy(deps.Runner, SettingsProfileFor(caps), deps.Backup, caps)
	default:
		return nil, fmt.Errorf("no strategy for method %s", m)
	}
}
