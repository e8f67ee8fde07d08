package ui

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withColorProfile sets the lipgloss profile for the test.
func withColorProfile(t *testing.T, p termenv.Profile) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(p)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestPaletteIsHex(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)
	palette := map[string]lipgloss.Color{
		"pink": ColorNeonPink, "cyan": ColorNeonCyan, "purple": ColorNeonPurple,
		"green": ColorNeonGreen, "orange": ColorNeonOrange, "amber": ColorNeonAmber,
		"void": ColorDeepVoid, "surface": ColorDarkSurface, "border": ColorGlassBorder,
		"primary": ColorPrimary, "secondary": ColorSecondary, "muted": ColorMuted,
		"error": ColorError,
	}
	for name, c := range palette {
		assert.Regexp(t, hex, string(c), name)
	}
}

func TestSemanticColorsShareNeonHues(t *testing.T) {
	// Severity colors in CLI tables match the dashboard's dark theme.
	assert.Equal(t, ColorNeonGreen, ColorSuccess)
	assert.Equal(t, ColorNeonAmber, ColorWarning)
	assert.Equal(t, ColorNeonCyan, ColorInfo)
	assert.NotEqual(t, ColorSuccess, ColorError)
}

func TestGradientCoversSpinnerFrames(t *testing.T) {
	require.Len(t, GradientColors, len(spinnerFrames), "one hue per frame")

	seen := map[lipgloss.Color]bool{}
	for _, c := range GradientColors {
		assert.False(t, seen[c], "duplicate gradient color %s", c)
		seen[c] = true
	}
}

func TestDisableColors(t *testing.T) {
	withColorProfile(t, termenv.TrueColor)
	assert.Contains(t, SuccessStyle().Render("ok"), "\x1b[", "colored before --no-color")

	DisableColors()

	for name, style := range map[string]lipgloss.Style{
		"success": SuccessStyle(),
		"error":   ErrorStyle(),
		"warning": WarningStyle(),
		"info":    InfoStyle(),
		"muted":   MutedStyle(),
	} {
		assert.Equal(t, "cpu_usage", style.Render("cpu_usage"), name)
	}
}

func TestDisableColors_SpinnerFailureIsPlain(t *testing.T) {
	withColorProfile(t, termenv.TrueColor)
	DisableColors()

	var out strings.Builder
	s := NewSpinner("Connecting to ws://localhost:4000/ws")
	s.SetOutput(func(str string) { out.WriteString(str) })
	s.Start()
	s.FailWith("no snapshot within 5s")

	assert.NotContains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), SymbolFail+" Connecting to ws://localhost:4000/ws")
	assert.Contains(t, out.String(), "\n  no snapshot within 5s")
}

func TestPrintWarning(t *testing.T) {
	withColorProfile(t, termenv.Ascii)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	prev := os.Stderr
	os.Stderr = w
	PrintWarning("feed.url points at a plain HTTP server")
	w.Close()
	os.Stderr = prev

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, SymbolWarning+" feed.url points at a plain HTTP server\n", buf.String())
}
