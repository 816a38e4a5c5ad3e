package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const labelWidth = 14

// Row is one label/value line of a rendered block.
type Row struct {
	Label string
	Value string
}

// Rows renders aligned label/value lines.
func Rows(rows ...Row) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top,
			Current.Label.Render(r.Label),
			Current.Value.Render(r.Value))
	}
	return strings.Join(lines, "\n")
}

// Section renders a titled block of text.
func Section(title, body string) string {
	return Current.Section.Render(title) + "\n" + body
}

// Check renders a present/missing line for a tool or service.
func Check(ok bool, name, detail string) string {
	mark := Current.ActiveStatus.Render("✓")
	if !ok {
		mark = Current.Error.Render("✗")
	}
	line := mark + name
	if detail != "" {
		line += " " + Current.InactiveStatus.Render(detail)
	}
	return line
}

// Badge renders a short status word, green when ok.
func Badge(ok bool, text string) string {
	if ok {
		return Current.ActiveStatus.Render(text)
	}
	return Current.InactiveStatus.Render(text)
}

// Warn renders a warning line.
func Warn(text string) string {
	return Current.WarningStatus.Render(text)
}
