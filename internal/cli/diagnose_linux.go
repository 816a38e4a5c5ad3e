//go:build linux

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/platform/linux"
	"github.com/stigoleg/wakefull/internal/ui"
)

func (a *App) diagnose(ctx context.Context) error {
	fmt.Fprintln(a.Out, renderReport(linux.Diagnose(ctx, linux.NewProbe())))
	return nil
}

func renderReport(r linux.Report) string {
	caps := r.Capabilities
	var sections []string

	sections = append(sections, ui.Section("Environment", ui.Rows(
		ui.Row{Label: "Display server", Value: caps.DisplayServer},
		ui.Row{Label: "Desktop", Value: caps.DesktopEnvironment},
		ui.Row{Label: "DISPLAY", Value: orDash(caps.Display)},
		ui.Row{Label: "Session bus", Value: ui.Badge(caps.SessionBus, yesNo(caps.SessionBus))},
		ui.Row{Label: "Distribution", Value: orDash(r.Distro.Name)},
	)))

	var tools []string
	for _, t := range caps.Tools() {
		detail := ""
		if !t.Available {
			detail = "missing"
		}
		tools = append(tools, ui.Check(t.Available, t.Name, detail))
	}
	sections = append(sections, ui.Section("Tools", strings.Join(tools, "\n")))

	var methods []string
	for _, m := range platform.AllMethods {
		usable := linux.Usable(m, caps)
		detail := m.Description()
		if m == r.Selected {
			detail += " (selected)"
		}
		methods = append(methods, ui.Check(usable, m.String(), detail))
	}
	if r.Selected == platform.MethodNone {
		methods = append(methods, ui.Warn("no usable method: wakefull cannot start here"))
	}
	sections = append(sections, ui.Section("Methods", strings.Join(methods, "\n")))

	sections = append(sections, ui.Section("DPMS", renderDPMS(r)))
	sections = append(sections, ui.Section("Session bus services", renderBus(r)))

	if msg := linux.FormatDependencyMessages(r.Missing); msg != "" {
		sections = append(sections, ui.Section("Install hints", strings.TrimRight(msg, "\n")))
	}
	return strings.Join(sections, "\n\n")
}

func renderDPMS(r linux.Report) string {
	switch {
	case r.DPMS != nil && !r.DPMS.Capable:
		return ui.Warn("X server has no DPMS support")
	case r.DPMS != nil:
		d := r.DPMS
		return ui.Rows(
			ui.Row{Label: "Enabled", Value: yesNo(d.Enabled)},
			ui.Row{Label: "Power level", Value: d.PowerLevel},
			ui.Row{Label: "Timeouts", Value: fmt.Sprintf("standby %ds, suspend %ds, off %ds", d.StandbyTimeout, d.SuspendTimeout, d.OffTimeout)},
		)
	case r.DPMSErr != nil:
		return ui.Warn(fmt.Sprintf("query failed: %v", r.DPMSErr))
	default:
		return ui.Badge(false, "no X display")
	}
}

func renderBus(r linux.Report) string {
	switch {
	case r.BusErr != nil:
		return ui.Warn(fmt.Sprintf("query failed: %v", r.BusErr))
	case !r.Capabilities.SessionBus:
		return ui.Badge(false, "no session bus")
	case len(r.BusServices) == 0:
		return ui.Badge(false, "no inhibit services own a name")
	default:
		return strings.Join(r.BusServices, "\n")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
