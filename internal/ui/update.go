package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/wakefull/internal/keepalive"
)

// tickMsg refreshes relative times such as "last refresh 12s ago".
type tickMsg time.Time

// statusMsg carries a snapshot from the Keeper.
type statusMsg keepalive.Status

// closedMsg means the Keeper finished and closed its updates.
type closedMsg struct{}

// Update handles messages and updates the model accordingly.
func Update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			if !m.Stopping {
				m.Stopping = true
				if m.stop != nil {
					m.stop()
				}
			}
			return m, nil
		case key.Matches(msg, m.keys.ToggleHelp):
			m.ShowHelp = !m.ShowHelp
			m.help.ShowAll = m.ShowHelp
			return m, nil
		}

	case statusMsg:
		m.Status = keepalive.Status(msg)
		return m, waitForStatus(m.updates)

	case closedMsg:
		m.Done = true
		return m, tea.Quit

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func waitForStatus(updates <-chan keepalive.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return statusMsg(s)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
