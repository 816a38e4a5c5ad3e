package platform

import (
	"fmt"
	"strings"
)

// Method identifies an inhibition mechanism.
type Method int

const (
	MethodNone Method = iota
	MethodSystemd
	MethodXDG
	MethodDBus
	MethodDesktopSettings
)

// AllMethods lists every usable method in selection priority order.
var AllMethods = []Method{
	MethodDesktopSettings,
	MethodSystemd,
	MethodXDG,
	MethodDBus,
}

func (m Method) String() string {
	switch m {
	case MethodSystemd:
		return "systemd-inhibit"
	case MethodXDG:
		return "xdg-screensaver"
	case MethodDBus:
		return "dbus"
	case MethodDesktopSettings:
		return "desktop-settings"
	default:
		return "none"
	}
}

// Description is a short human readable summary used by status output.
func (m Method) Description() string {
	switch m {
	case MethodSystemd:
		return "systemd-inhibit (idle + sleep + lid switch)"
	case MethodXDG:
		return "xdg-screensaver + xset (X11 screensaver + DPMS)"
	case MethodDBus:
		return "D-Bus ScreenSaver / PowerManagement / SessionManager"
	case MethodDesktopSettings:
		return "desktop settings (presentation mode, DPMS and blanking off)"
	default:
		return "no inhibition method"
	}
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return MethodNone, nil
	case "systemd-inhibit", "systemd":
		return MethodSystemd, nil
	case "xdg-screensaver", "xdg", "x11":
		return MethodXDG, nil
	case "dbus", "d-bus":
		return MethodDBus, nil
	case "desktop-settings", "settings", "xfce", "gnome":
		return MethodDesktopSettings, nil
	default:
		return MethodNone, fmt.Errorf("unknown inhibition method %q", s)
	}
}
