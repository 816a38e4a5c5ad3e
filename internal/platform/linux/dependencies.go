//go:build linux

package linux

import (
	"fmt"
	"strings"
)

// DependencyInfo contains information about a missing dependency and how to install it.
type DependencyInfo struct {
	Name       string
	WhyNeeded  string
	InstallCmd string
	Note       string
}

// packageNames maps a tool to its package per package manager. An empty
// manager key is the fallback.
var packageNames = map[string]map[string]string{
	toolSystemdInhibit: {"": "systemd"},
	toolXDGScreensaver: {"": "xdg-utils"},
	toolXset:           {"apt": "x11-xserver-utils", "pacman": "xorg-xset", "dnf": "xorg-x11-server-utils", "yum": "xorg-x11-server-utils", "zypper": "xset", "apk": "xset"},
	toolXdotool:        {"": "xdotool"},
	toolXfconf:         {"": "xfconf"},
	toolGsettings:      {"apt": "libglib2.0-bin", "": "glib2"},
	toolDBusSend:       {"apt": "dbus", "": "dbus"},
	toolGDBus:          {"apt": "libglib2.0-bin", "": "glib2"},
}

// packageName returns the package providing tool under pkgManager.
func packageName(tool, pkgManager string) string {
	names, ok := packageNames[strings.ToLower(tool)]
	if !ok {
		return ""
	}
	if name, ok := names[pkgManager]; ok {
		return name
	}
	return names[""]
}

// GenerateInstallCommand generates a distro-specific installation command for the given tool.
func GenerateInstallCommand(tool string, distro DistroInfo) (cmd string, note string) {
	if tool == "" {
		return "", "Tool name is required"
	}

	pkgName := packageName(tool, distro.PkgManager)
	if pkgName == "" {
		return "", fmt.Sprintf("Package name not available for tool '%s'", tool)
	}

	switch distro.PkgManager {
	case "apt":
		cmd = fmt.Sprintf("sudo apt update && sudo apt install %s", pkgName)
	case "dnf", "yum":
		cmd = fmt.Sprintf("sudo %s install %s", distro.PkgManager, pkgName)
	case "pacman":
		cmd = fmt.Sprintf("sudo pacman -S %s", pkgName)
	case "zypper":
		cmd = fmt.Sprintf("sudo zypper install %s", pkgName)
	case "apk":
		cmd = fmt.Sprintf("sudo apk add %s", pkgName)
	default:
		cmd = fmt.Sprintf("Install %s using your distribution's package manager", pkgName)
		note = fmt.Sprintf("Package name: %s. Check your distribution's repositories.", pkgName)
	}
	if tool == toolSystemdInhibit {
		note = "systemd-inhibit needs systemd-logind; it is absent on non-systemd distributions."
	}
	return cmd, note
}

// CheckMissingDependencies lists the tools that would widen the set of
// usable methods under caps.
func CheckMissingDependencies(caps Capabilities, distro DistroInfo) []DependencyInfo {
	var missing []DependencyInfo
	add := func(tool, why string) {
		cmd, note := GenerateInstallCommand(tool, distro)
		missing = append(missing, DependencyInfo{Name: tool, WhyNeeded: why, InstallCmd: cmd, Note: note})
	}

	if !caps.SystemdInhibit {
		add(toolSystemdInhibit, "Blocks idle, sleep and lid-switch handling through logind (works on any desktop)")
	}
	if caps.DisplayServer == DisplayServerX11 {
		if !caps.XDGScreensaver {
			add(toolXDGScreensaver, "Suspends the X11 screensaver for wakefull's helper window")
		}
		if !caps.Xset {
			add(toolXset, "Turns off X11 screen blanking and DPMS")
		}
		if !caps.Xdotool {
			add(toolXdotool, "Simulates a key tap so idle timers keep resetting (optional)")
		}
	}
	switch caps.DesktopEnvironment {
	case DesktopXFCE:
		if !caps.Xfconf {
			add(toolXfconf, "Enables XFCE presentation mode and disables its DPMS and blanking")
		}
	case DesktopGNOME, DesktopCosmic:
		if !caps.Gsettings {
			add(toolGsettings, "Disables GNOME idle delay and automatic suspend")
		}
	}
	if !caps.SessionBus && !caps.DBusSend && !caps.GDBus {
		add(toolDBusSend, "Reaches the session bus inhibit services when no bus address is set")
	}
	return missing
}

// FormatDependencyMessages formats dependency information into user-friendly messages.
func FormatDependencyMessages(missing []DependencyInfo) string {
	if len(missing) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Missing optional dependencies:\n\n")
	for i, dep := range missing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, dep.Name)
		fmt.Fprintf(&b, "   Why needed: %s\n", dep.WhyNeeded)
		fmt.Fprintf(&b, "   Install with: %s\n", dep.InstallCmd)
		if dep.Note != "" {
			fmt.Fprintf(&b, "   Note: %s\n", dep.Note)
		}
	}
	return b.String()
}
