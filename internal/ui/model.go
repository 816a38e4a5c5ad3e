package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/wakefull/internal/keepalive"
)

// Model is the foreground dashboard. It renders status snapshots from a
// running Keeper and asks it to stop on q.
type Model struct {
	Status   keepalive.Status
	Stopping bool
	Done     bool
	ShowHelp bool

	updates <-chan keepalive.Status
	stop    func()
	now     func() time.Time

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
}

// NewModel builds a dashboard fed by updates. stop is called once when
// the user asks to quit; the program exits after updates is closed.
func NewModel(updates <-chan keepalive.Status, stop func()) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(Current.Spinner),
	)
	return Model{
		Status:  keepalive.Status{State: keepalive.StateStarting},
		updates: updates,
		stop:    stop,
		now:     time.Now,
		keys:    DefaultKeys(),
		help:    NewHelpModel(),
		spinner: s,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForStatus(m.updates), tick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return Update(msg, m)
}

// View implements tea.Model
func (m Model) View() string {
	return View(m)
}
