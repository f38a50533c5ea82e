package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/syncer"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(string(ColorMuted))).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(string(ColorPrimary)))
	s.Cell = s.Cell.
		Foreground(lipgloss.Color(string(ColorPrimary)))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(string(ColorPrimary))).
		Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// RenderProfileTable renders the profile list. Passwords are never shown.
func RenderProfileTable(profiles []store.Profile) string {
	if len(profiles) == 0 {
		return "No profiles configured. Add one with 'sshdeck profile add'."
	}

	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		rows[i] = []string{
			p.Title,
			p.Username + "@" + p.Host,
			strconv.Itoa(p.PortOrDefault()),
		}
	}
	return RenderSimpleTable([]TableColumn{
		{Title: "TITLE", Width: 20},
		{Title: "TARGET", Width: 36},
		{Title: "PORT", Width: 6},
	}, rows)
}

// RenderCommandTable renders the command list in line-number order.
func RenderCommandTable(commands []store.Command) string {
	if len(commands) == 0 {
		return "No commands saved. Add one with 'sshdeck cmd add'."
	}

	rows := make([][]string, len(commands))
	for i, c := range commands {
		url := c.URL
		if url == "" {
			url = "-"
		}
		rows[i] = []string{
			strconv.Itoa(c.LineNumber),
			c.Title,
			truncate(c.Command, 38),
			c.Profile,
			truncate(url, 24),
		}
	}
	return RenderSimpleTable([]TableColumn{
		{Title: "#", Width: 4},
		{Title: "TITLE", Width: 18},
		{Title: "COMMAND", Width: 40},
		{Title: "PROFILE", Width: 16},
		{Title: "URL", Width: 26},
	}, rows)
}

// RenderDeviceTable renders the cloud device list with derived online
// status.
func RenderDeviceTable(devices []syncer.Device, selfID string) string {
	if len(devices) == 0 {
		return "No devices registered."
	}

	var b strings.Builder
	for _, d := range devices {
		name := d.DeviceName
		if d.DeviceID == selfID {
			name += " (this device)"
		}

		line := fmt.Sprintf("%s %-30s %-34s last seen %s",
			StatusSymbol(d.Online),
			name,
			styled(ColorMuted, d.DeviceID),
			humanizeSince(d.LastSeen),
		)
		if d.PendingPush {
			line += " " + styled(ColorWarning, "[push pending]")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func humanizeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
