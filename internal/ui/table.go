package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableStyle provides consistent styling for tables across the CLI.
type TableStyle struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Cell: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Selected: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Background(ColorMuted),
		Border: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

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

	// Apply styling
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
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

	// Create the table
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// WidgetRow is one line of `pulse widget list`.
type WidgetRow struct {
	ID       string
	Type     string
	Metric   string
	Position string // "x,y"
	Size     string // "wxh"
	Refresh  string
	Z        int
}

// RenderWidgetTable renders the saved dashboard layout, back to front.
func RenderWidgetTable(rows []WidgetRow) string {
	if len(rows) == 0 {
		return "No widgets on the dashboard"
	}

	columns := []TableColumn{
		{Title: "ID", Width: idWidth(rows)},
		{Title: "TYPE", Width: 12},
		{Title: "METRIC", Width: 14},
		{Title: "POSITION", Width: 10},
		{Title: "SIZE", Width: 9},
		{Title: "REFRESH", Width: 8},
		{Title: "Z", Width: 3},
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.ID, r.Type, r.Metric, r.Position, r.Size, r.Refresh, fmt.Sprintf("%d", r.Z)}
	}
	return RenderSimpleTable(columns, cells)
}

func idWidth(rows []WidgetRow) int {
	w := len("ID")
	for _, r := range rows {
		w = max(w, lipgloss.Width(r.ID))
	}
	return w + 1
}

// MetricRow is one reading in `pulse status` output.
type MetricRow struct {
	Title  string
	Value  string // formatted with unit; empty when the feed has no value
	Status string // "normal", "warning", "critical", or "neutral"
}

// RenderMetricTable renders the latest feed readings with a severity dot.
func RenderMetricTable(rows []MetricRow) string {
	if len(rows) == 0 {
		return "No metrics"
	}

	mutedStyle := MutedStyle()
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var output string
	output += headerStyle.Render("  "+padRight("METRIC", 20)+"VALUE") + "\n"

	for _, row := range rows {
		var icon, value string
		switch {
		case row.Value == "":
			icon = mutedStyle.Render(SymbolPending)
			value = mutedStyle.Render("no data")
		default:
			style := statusStyle(row.Status)
			icon = style.Render(SymbolComplete)
			value = style.Render(row.Value)
		}
		output += "  " + icon + " " + padRight(row.Title, 18) + " " + value + "\n"
	}

	return output
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "critical":
		return ErrorStyle()
	case "warning":
		return WarningStyle()
	case "neutral":
		return InfoStyle()
	default:
		return SuccessStyle()
	}
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	padding := width - visibleLen
	for i := 0; i < padding; i++ {
		s += " "
	}
	return s
}
