package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stigoleg/wakefull/internal/keepalive"
)

func stateStyle(s keepalive.State) lipgloss.Style {
	switch s {
	case keepalive.StateRunning:
		return Current.ActiveStatus
	case keepalive.StateStarting, keepalive.StateStopping:
		return Current.WarningStatus
	default:
		return Current.InactiveStatus
	}
}

// FormatCookies renders D-Bus inhibit cookies as "name=value" pairs in
// name order.
func FormatCookies(cookies map[string]uint32) string {
	if len(cookies) == 0 {
		return "-"
	}
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, cookies[name])
	}
	return strings.Join(parts, " ")
}

// FormatSince renders t relative to now, "never" for the zero time.
func FormatSince(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t).Round(time.Second)
	if d < time.Second {
		return "just now"
	}
	return d.String() + " ago"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
