//go:build linux

package linux

import "github.com/stigoleg/wakefull/internal/platform"

// SettingsProfile names the desktop settings tool set for a session.
type SettingsProfile string

const (
	ProfileNone  SettingsProfile = ""
	ProfileXFCE  SettingsProfile = "xfce"
	ProfileGNOME SettingsProfile = "gnome"
)

// SettingsProfileFor returns the settings profile usable in caps.
func SettingsProfileFor(caps Capabilities) SettingsProfile {
	switch caps.DesktopEnvironment {
	case DesktopXFCE:
		if caps.Xfconf {
			return ProfileXFCE
		}
	case DesktopGNOME, DesktopCosmic:
		if caps.Gsettings {
			return ProfileGNOME
		}
	}
	return ProfileNone
}

// Usable reports whether m can run under caps.
func Usable(m platform.Method, caps Capabilities) bool {
	switch m {
	case platform.MethodDesktopSettings:
		return SettingsProfileFor(caps) != ProfileNone
	case platform.MethodSystemd:
		return caps.SystemdInhibit
	case platform.MethodXDG:
		return caps.XDGScreensaver && caps.Display != ""
	case platform.MethodDBus:
		return caps.SessionBus || caps.DBusSend || caps.GDBus
	default:
		return false
	}
}

// Rank returns every usable method in priority order.
func Rank(caps Capabilities) []platform.Method {
	var usable []platform.Method
	for _, m := range platform.AllMethods {
		if Usable(m, caps) {
			usable = append(usable, m)
		}
	}
	return usable
}

// SelectMethod picks the highest priority usable method, or MethodNone.
// The result depends on caps alone.
func SelectMethod(caps Capabilities) platform.Method {
	if ranked := Rank(caps); len(ranked) > 0 {
		return ranked[0]
	}
	return platform.MethodNone
}

// SelectPreferred honours a configured method when it is usable and falls
// back to SelectMethod otherwise. MethodNone as preference means automatic.
func SelectPreferred(preferred platform.Method, caps Capabilities) platform.Method {
	if preferred != platform.MethodNone && Usable(preferred, caps) {
		return preferred
	}
	return SelectMethod(caps)
}
