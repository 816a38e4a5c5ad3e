//go:build linux

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/platform/linux"
)

func TestRenderReport(t *testing.T) {
	caps := linux.Capabilities{
		DisplayServer:      linux.DisplayServerX11,
		DesktopEnvironment: linux.DesktopXFCE,
		Display:            ":0",
		SessionBus:         true,
		Xfconf:             true,
		Xset:               true,
		DBusSend:           true,
	}
	r := linux.Report{
		Capabilities: caps,
		Ranked:       linux.Rank(caps),
		Selected:     linux.SelectMethod(caps),
		Distro:       linux.DistroInfo{Name: "debian", PkgManager: "apt"},
		Missing: []linux.DependencyInfo{
			{Name: "xdotool", WhyNeeded: "activity simulation", InstallCmd: "sudo apt install xdotool"},
		},
		DPMS:        &linux.DPMSStatus{Capable: true, Enabled: true, PowerLevel: "on", StandbyTimeout: 600},
		BusServices: []string{"org.freedesktop.ScreenSaver"},
	}

	out := renderReport(r)
	for _, want := range []string{
		"x11",
		"xfce",
		"debian",
		"xfconf-query",
		"desktop-settings",
		"(selected)",
		"standby 600s",
		"org.freedesktop.ScreenSaver",
		"sudo apt install xdotool",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, platform.MethodDesktopSettings, r.Selected)
}

func TestRenderReportNothingUsable(t *testing.T) {
	r := linux.Report{
		Capabilities: linux.Capabilities{DisplayServer: linux.DisplayServerUnknown, DesktopEnvironment: linux.DesktopUnknown},
		DPMSErr:      errors.New("no display"),
	}

	out := renderReport(r)
	assert.Contains(t, out, "no usable method")
	assert.Contains(t, out, "no session bus")
	assert.Contains(t, out, "query failed: no display")
}
