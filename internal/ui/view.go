package ui

import (
	"fmt"
	"strings"

	"github.com/stigoleg/wakefull/internal/keepalive"
	"github.com/stigoleg/wakefull/internal/platform"
)

// View renders the current state of the model to a string.
func View(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("wakefull"))
	b.WriteString(headline(m))
	b.WriteString("\n\n")
	b.WriteString(Current.Panel.Render(Rows(statusRows(m)...)))
	b.WriteString("\n")

	if m.Status.Err != nil {
		b.WriteString("\n" + Current.Error.Render(m.Status.Err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	if m.ShowHelp {
		b.WriteString("\n\n" + Current.Help.Render(helpText))
	}
	b.WriteString("\n")
	return b.String()
}

func headline(m Model) string {
	s := m.Status
	switch {
	case m.Done:
		return stateStyle(keepalive.StateNotRunning).Render("stopped")
	case m.Stopping && s.State != keepalive.StateNotRunning:
		return m.spinner.View() + stateStyle(keepalive.StateStopping).Render("stopping")
	case s.State == keepalive.StateRunning && s.Healthy:
		return m.spinner.View() + stateStyle(s.State).Render("keeping the system awake")
	case s.State == keepalive.StateRunning:
		return m.spinner.View() + Current.WarningStatus.Render("restarting inhibition")
	default:
		return m.spinner.View() + stateStyle(s.State).Render(s.State.String())
	}
}

func statusRows(m Model) []Row {
	s := m.Status
	now := m.now()

	method := "-"
	if s.Method != platform.MethodNone {
		method = s.Method.String()
	}
	pid := "-"
	if s.PID > 0 {
		pid = fmt.Sprint(s.PID)
	}
	started := "-"
	if !s.Started.IsZero() {
		started = fmt.Sprintf("%s (%s)", s.Started.Format("15:04:05"), FormatSince(s.Started, now))
	}
	health := Badge(s.Healthy, "ok")
	if !s.Healthy {
		health = Warn("not alive")
	}
	if s.Restarts > 0 {
		health += fmt.Sprintf(" (%d restarts)", s.Restarts)
	}

	return []Row{
		{"Method", method},
		{"PID", pid},
		{"Window", orDash(s.WindowID)},
		{"Cookies", FormatCookies(s.Cookies)},
		{"Started", started},
		{"Last refresh", FormatSince(s.LastRefresh, now)},
		{"Health", health},
	}
}

const helpText = `The inhibition stays active while this dashboard runs.
Quitting stops the daemon and restores screensaver, DPMS and
desktop settings.

Run "wakefull --start" instead to keep it running in the background.`
