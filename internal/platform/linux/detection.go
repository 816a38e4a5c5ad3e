//go:build linux

// Package linux implements wakefull's inhibition strategies on Linux:
// environment probing, method selection, and the systemd-inhibit,
// xdg-screensaver, D-Bus and desktop settings strategies.
package linux

import (
	"bufio"
	"os"
	"strings"

	"github.com/stigoleg/wakefull/internal/platform"
)

// Display server types.
const (
	DisplayServerWayland = "wayland"
	DisplayServerX11     = "x11"
	DisplayServerUnknown = "unknown"
)

// Desktop environment types.
const (
	DesktopCosmic  = "cosmic"
	DesktopGNOME   = "gnome"
	DesktopKDE     = "kde"
	DesktopXFCE    = "xfce"
	DesktopMATE    = "mate"
	DesktopUnknown = "unknown"
)

// External tools the prober looks for.
const (
	toolSystemdInhibit = "systemd-inhibit"
	toolXDGScreensaver = "xdg-screensaver"
	toolXset           = "xset"
	toolXdotool        = "xdotool"
	toolXfconf         = "xfconf-query"
	toolGsettings      = "gsettings"
	toolDBusSend       = "dbus-send"
	toolGDBus          = "gdbus"
)

// Capabilities is a snapshot of the environment the daemon runs in.
type Capabilities struct {
	DisplayServer      string
	DesktopEnvironment string
	Display            string
	SessionBus         bool

	SystemdInhibit bool
	XDGScreensaver bool
	Xset           bool
	Xdotool        bool
	Xfconf         bool
	Gsettings      bool
	DBusSend       bool
	GDBus          bool
}

// Tools lists every probed tool with its availability, in display order.
func (c Capabilities) Tools() []ToolStatus {
	return []ToolStatus{
		{Name: toolSystemdInhibit, Available: c.SystemdInhibit},
		{Name: toolXDGScreensaver, Available: c.XDGScreensaver},
		{Name: toolXset, Available: c.Xset},
		{Name: toolXdotool, Available: c.Xdotool},
		{Name: toolXfconf, Available: c.Xfconf},
		{Name: toolGsettings, Available: c.Gsettings},
		{Name: toolDBusSend, Available: c.DBusSend},
		{Name: toolGDBus, Available: c.GDBus},
	}
}

// ToolStatus is one line of the capability report.
type ToolStatus struct {
	Name      string
	Available bool
}

// Probe inspects the environment. Both lookups are injectable for tests.
type Probe struct {
	Getenv     func(string) string
	HasCommand func(string) bool
}

// NewProbe returns a Probe reading the process environment and PATH.
func NewProbe() Probe {
	return Probe{Getenv: os.Getenv, HasCommand: platform.HasCommand}
}

// Detect gathers the current Capabilities.
func (p Probe) Detect() Capabilities {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	has := p.HasCommand
	if has == nil {
		has = platform.HasCommand
	}

	return Capabilities{
		DisplayServer:      detectDisplayServer(getenv),
		DesktopEnvironment: detectDesktopEnvironment(getenv),
		Display:            getenv("DISPLAY"),
		SessionBus:         getenv("DBUS_SESSION_BUS_ADDRESS") != "",
		SystemdInhibit:     has(toolSystemdInhibit),
		XDGScreensaver:     has(toolXDGScreensaver),
		Xset:               has(toolXset),
		Xdotool:            has(toolXdotool),
		Xfconf:             has(toolXfconf),
		Gsettings:          has(toolGsettings),
		DBusSend:           has(toolDBusSend),
		GDBus:              has(toolGDBus),
	}
}

// DetectCapabilities probes the live environment.
func DetectCapabilities() Capabilities {
	return NewProbe().Detect()
}

func detectDesktopEnvironment(getenv func(string) string) string {
	xdgDesktop := strings.ToLower(getenv("XDG_CURRENT_DESKTOP"))
	desktopSession := strings.ToLower(getenv("DESKTOP_SESSION"))
	has := func(s string) bool {
		return strings.Contains(xdgDesktop, s) || strings.Contains(desktopSession, s)
	}

	switch {
	case has(DesktopCosmic) || has("pop"):
		return DesktopCosmic
	case has(DesktopGNOME):
		return DesktopGNOME
	case has(DesktopKDE) || strings.Contains(xdgDesktop, "plasma"):
		return DesktopKDE
	case has(DesktopXFCE):
		return DesktopXFCE
	case has(DesktopMATE):
		return DesktopMATE
	default:
		return DesktopUnknown
	}
}

func detectDisplayServer(getenv func(string) string) string {
	sessionType := getenv("XDG_SESSION_TYPE")
	switch {
	case getenv("WAYLAND_DISPLAY") != "", sessionType == DisplayServerWayland:
		return DisplayServerWayland
	case getenv("DISPLAY") != "", sessionType == DisplayServerX11:
		return DisplayServerX11
	default:
		return DisplayServerUnknown
	}
}

// DistroInfo contains information about the detected Linux distribution.
type DistroInfo struct {
	Name       string
	PkgManager string
}

// DetectDistribution detects the Linux distribution and package manager.
func DetectDistribution() DistroInfo {
	file, err := os.Open("/etc/os-release")
	if err != nil {
		return DistroInfo{Name: "unknown", PkgManager: detectPackageManager()}
	}
	defer file.Close()

	var id, idLike string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "ID":
			id = strings.Trim(value, "\"")
		case "ID_LIKE":
			idLike = strings.Trim(value, "\"")
		}
	}

	distro := strings.ToLower(id)
	if distro == "" {
		distro = "unknown"
	}
	return DistroInfo{Name: distro, PkgManager: packageManagerFor(distro, idLike)}
}

func packageManagerFor(distro, idLike string) string {
	switch {
	case distro == "debian" || distro == "ubuntu" || distro == "pop" ||
		strings.Contains(idLike, "debian") || strings.Contains(idLike, "ubuntu"):
		return "apt"
	case distro == "fedora" || distro == "rhel" || distro == "centos" ||
		strings.Contains(idLike, "fedora") || strings.Contains(idLike, "rhel"):
		if platform.HasCommand("dnf") {
			return "dnf"
		}
		return "yum"
	case distro == "arch" || distro == "manjaro" || strings.Contains(idLike, "arch"):
		return "pacman"
	case strings.HasPrefix(distro, "opensuse") || strings.Contains(idLike, "suse"):
		return "zypper"
	case distro == "alpine":
		return "apk"
	default:
		return detectPackageManager()
	}
}

func detectPackageManager() string {
	for _, m := range []string{"apt", "dnf", "yum", "pacman", "zypper", "apk"} {
		if platform.HasCommand(m) {
			return m
		}
	}
	return "unknown"
}
