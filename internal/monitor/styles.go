package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// Palette is the set of colors the canvas is drawn with. The dashboard's
// theme flag picks one of DarkPalette or LightPalette.
type Palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	Accent    lipgloss.Color
	AccentDim lipgloss.Color
	Graph     lipgloss.Color
}

// DarkPalette is the default synthwave theme.
var DarkPalette = Palette{
	Background: lipgloss.Color("#0A0A0F"),
	Surface:    lipgloss.Color("#12121A"),
	Border:     lipgloss.Color("#2A2A4A"),

	Healthy:  lipgloss.Color("#39FF14"),
	Warning:  lipgloss.Color("#FFAA00"),
	Critical: lipgloss.Color("#FF0055"),

	TextPrimary:   lipgloss.Color("#FFFFFF"),
	TextSecondary: lipgloss.Color("#B4B4D0"),
	TextMuted:     lipgloss.Color("#6B6B8D"),

	Accent:    lipgloss.Color("#FF2E97"),
	AccentDim: lipgloss.Color("#BF40FF"),
	Graph:     lipgloss.Color("#00FFFF"),
}

// LightPalette keeps the same hues at print-friendly contrast.
var LightPalette = Palette{
	Background: lipgloss.Color("#F3F4F6"),
	Surface:    lipgloss.Color("#FFFFFF"),
	Border:     lipgloss.Color("#D1D5DB"),

	Healthy:  lipgloss.Color("#15803D"),
	Warning:  lipgloss.Color("#B45309"),
	Critical: lipgloss.Color("#BE123C"),

	TextPrimary:   lipgloss.Color("#111827"),
	TextSecondary: lipgloss.Color("#4B5563"),
	TextMuted:     lipgloss.Color("#9CA3AF"),

	Accent:    lipgloss.Color("#DB2777"),
	AccentDim: lipgloss.Color("#7C3AED"),
	Graph:     lipgloss.Color("#0891B2"),
}

// PaletteFor returns the palette for the theme flag.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// TierColor maps a severity tier to its color. Neutral values use the
// secondary text color.
func (p Palette) TierColor(t metric.Tier) lipgloss.Color {
	switch t {
	case metric.TierCritical:
		return p.Critical
	case metric.TierWarning:
		return p.Warning
	case metric.TierNormal:
		return p.Healthy
	default:
		return p.TextSecondary
	}
}

// Canvas and chrome styles.
func (p Palette) canvasStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(p.Background)
}

func (p Palette) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		Background(p.Surface).
		Bold(true).
		Padding(0, 1)
}

func (p Palette) footerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Padding(0, 1)
}

func (p Palette) labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.TextSecondary).Background(p.Surface)
}

func (p Palette) mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.TextMuted).Background(p.Surface)
}

func (p Palette) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.TextPrimary).Background(p.Surface).Bold(true)
}

// cardState selects the border treatment for a widget box.
type cardState int

const (
	cardIdle cardState = iota
	cardSelected
	cardActive
	cardConflict
)

// cardStyle returns the bordered box style for a widget. Inner width and
// height are set by the caller.
func (p Palette) cardStyle(state cardState) lipgloss.Style {
	border := p.Border
	b := lipgloss.RoundedBorder()
	switch state {
	case cardSelected:
		border = p.Accent
	case cardActive:
		border = p.Graph
		b = lipgloss.ThickBorder()
	case cardConflict:
		border = p.Critical
		b = lipgloss.ThickBorder()
	}
	return lipgloss.NewStyle().
		Border(b).
		BorderForeground(border).
		BorderBackground(p.Background).
		Background(p.Surface).
		Padding(0, 1)
}

// Connection banner glyphs.
const (
	StatusConnected    = "◉"
	StatusDisconnected = "◌"
	StatusFailed       = "✗"
	StatusWaiting      = "◐"
)

// ConnectingSpinnerFrames animate the banner while the feed is connecting.
var ConnectingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
