package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// widgetTypes is the picker's first step.
var widgetTypes = dashboard.Types()

// picker is the two-step add-widget overlay: choose a type, then a metric.
type picker struct {
	step   int
	cursor int
	typ    dashboard.Type
}

func newPicker() *picker {
	return &picker{}
}

func (p *picker) options() []string {
	if p.step == 0 {
		out := make([]string, len(widgetTypes))
		for i, t := range widgetTypes {
			out[i] = t.Label()
		}
		return out
	}
	names := metric.All()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.Title()
	}
	return out
}

func (p *picker) move(step int) {
	n := len(p.options())
	p.cursor = (p.cursor + step + n) % n
}

// confirm accepts the highlighted option. It returns done once both a type
// and a metric have been chosen.
func (p *picker) confirm() (dashboard.Type, metric.Name, bool) {
	if p.step == 0 {
		p.typ = widgetTypes[p.cursor]
		p.step = 1
		p.cursor = 0
		return "", "", false
	}
	return p.typ, metric.All()[p.cursor], true
}

func (p *picker) title() string {
	if p.step == 0 {
		return "Add widget: choose a type"
	}
	return "Add " + p.typ.Label() + ": choose a metric"
}

// renderPicker draws the overlay centered on the screen.
func (m Model) renderPicker(pal Palette) string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Foreground(pal.Accent).Bold(true).Render(m.picker.title()), "")

	for i, opt := range m.picker.options() {
		style := lipgloss.NewStyle().Foreground(pal.TextSecondary)
		prefix := "  "
		if i == m.picker.cursor {
			style = lipgloss.NewStyle().Foreground(pal.TextPrimary).Bold(true)
			prefix = "▸ "
		}
		lines = append(lines, style.Render(prefix+opt))
	}

	lines = append(lines, "", lipgloss.NewStyle().Foreground(pal.TextMuted).Render("enter select · esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.Accent).
		Background(pal.Surface).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(pal.Background))
}
