package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelpOverlay renders a centered help box with every key binding,
// plus the mouse gestures the canvas understands.
func (m Model) renderHelpOverlay(pal Palette) string {
	titleStyle := lipgloss.NewStyle().Foreground(pal.Accent).Bold(true).MarginBottom(1)
	keyStyle := lipgloss.NewStyle().Foreground(pal.TextPrimary).Bold(true).Width(14)
	descStyle := lipgloss.NewStyle().Foreground(pal.TextSecondary)

	var lines []string
	lines = append(lines, titleStyle.Render("Keyboard Shortcuts"))

	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, keyStyle.Render(h.Key)+descStyle.Render(h.Desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		keyStyle.Render("drag")+descStyle.Render("Move a widget"),
		keyStyle.Render("drag edge")+descStyle.Render("Resize a widget"),
		keyStyle.Render("right click")+descStyle.Render("Select without moving"),
		"",
		descStyle.Render("Press ? to close"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.Accent).
		Background(pal.Surface).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(pal.Background),
	)
}
