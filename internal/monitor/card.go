package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// cardData is everything needed to draw one widget.
type cardData struct {
	widget dashboard.Widget
	series dashboard.Series
	err    string
}

// renderCard draws a widget as a bordered box exactly box.width by
// box.height cells.
func renderCard(p Palette, d cardData, box cellRect, state cardState) string {
	innerW := max(1, box.width-4)
	innerH := max(1, box.height-2)

	lines := []string{
		p.titleStyle().Render(ansi.Truncate(d.widget.Title, innerW, "…")),
	}
	if innerH > 2 {
		meta := fmt.Sprintf("%s · %s", d.widget.Type().Label(), d.widget.Metric.Unit())
		lines = append(lines, p.mutedStyle().Render(ansi.Truncate(meta, innerW, "…")))
	}

	body := innerH - len(lines)
	latest, ok := d.series.Latest()
	switch {
	case !ok && d.err != "":
		lines = append(lines, wrapText(p.tierStyle(metric.TierCritical), d.err, innerW, body)...)
	case !ok:
		lines = append(lines, p.mutedStyle().Render(ansi.Truncate("Waiting for data…", innerW, "")))
	default:
		switch cfg := d.widget.Config.(type) {
		case dashboard.LineChartConfig:
			lines = append(lines, lineChartBody(p, d, latest.Value, innerW, body)...)
		case dashboard.GaugeConfig:
			lines = append(lines, gaugeBody(p, d.widget.Metric, cfg, latest.Value, innerW, body)...)
		case dashboard.KeyMetricConfig:
			lines = append(lines, keyMetricBody(p, d, cfg, latest.Value, innerW, body)...)
		}
	}

	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for i, line := range lines {
		lines[i] = fillLine(p, line, innerW)
	}

	return p.cardStyle(state).
		Width(box.width - 2).
		Height(box.height - 2).
		Render(strings.Join(lines, "\n"))
}

// lineChartBody is the current value followed by a braille chart of the
// configured time window.
func lineChartBody(p Palette, d cardData, latest float64, width, rows int) []string {
	m := d.widget.Metric
	th := dashboard.LineThresholds(m)
	value := lipgloss.NewStyle().
		Foreground(p.TierColor(th.Classify(latest))).
		Background(p.Surface).
		Bold(true).
		Render(FormatValue(latest, m.Unit()))

	out := []string{value}
	if rows <= 1 {
		return out
	}
	colorOf := func(v float64) lipgloss.Color { return p.TierColor(th.Classify(v)) }
	chart := RenderBrailleSparkline(d.series.Values(), width, rows-1, m.Max(), colorOf, p.Surface)
	return append(out, strings.Split(chart, "\n")...)
}

// gaugeBody shows the value, its share of the gauge range, and a bar that
// shades through the threshold bands.
func gaugeBody(p Palette, m metric.Name, cfg dashboard.GaugeConfig, v float64, width, rows int) []string {
	pct := cfg.Percent(v)
	valueStyle := p.tierStyle(cfg.Tier(v)).Bold(true)

	out := []string{
		valueStyle.Render(FormatValue(v, m.Unit())) +
			p.labelStyle().Render(fmt.Sprintf("  %.0f%%", pct)),
	}
	if rows < 2 {
		return out
	}

	span := cfg.Max - cfg.Min
	colorAt := func(pos float64) lipgloss.Color {
		return p.TierColor(cfg.Tier(cfg.Min + span*pos/100))
	}
	out = append(out, RenderGradientBar(width, pct, colorAt, p.TextMuted, p.Surface))

	if rows >= 3 {
		lo := FormatValue(cfg.Min, "")
		hi := FormatValue(cfg.Max, "")
		gap := width - lipgloss.Width(lo) - lipgloss.Width(hi)
		if gap >= 1 {
			out = append(out, p.mutedStyle().Render(lo+strings.Repeat(" ", gap)+hi))
		}
	}
	return out
}

// keyMetricBody shows the value in its severity color, the change since
// the previous reading, and a one-row history.
func keyMetricBody(p Palette, d cardData, cfg dashboard.KeyMetricConfig, v float64, width, rows int) []string {
	m := d.widget.Metric
	unit := cfg.Unit
	if unit == "" {
		unit = m.Unit()
	}

	out := []string{
		p.tierStyle(m.ValueTier(v)).Bold(true).Render(FormatValue(v, unit)),
	}

	if cfg.ShowTrend && len(out) < rows {
		if trend, ok := d.series.Trend(); ok {
			out = append(out, p.tierStyle(trend.Tier(m)).Render(formatTrend(trend)))
		}
	}

	if len(out) < rows {
		spark := RenderMiniSparkline(d.series.Values(), width, m.Max())
		out = append(out, lipgloss.NewStyle().Foreground(p.Graph).Background(p.Surface).Render(spark))
	}
	return out
}

// tierStyle returns a surface-backed text style in the tier's color.
func (p Palette) tierStyle(t metric.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.TierColor(t)).Background(p.Surface)
}

// fillLine truncates or pads line to exactly width cells on the surface
// background.
func fillLine(p Palette, line string, width int) string {
	line = ansi.Truncate(line, width, "")
	if pad := width - ansi.StringWidth(line); pad > 0 {
		line += lipgloss.NewStyle().Background(p.Surface).Render(strings.Repeat(" ", pad))
	}
	return line
}

// wrapText word-wraps s into at most rows lines of width cells.
func wrapText(style lipgloss.Style, s string, width, rows int) []string {
	if rows < 1 {
		rows = 1
	}
	wrapped := strings.Split(ansi.Wordwrap(s, width, " "), "\n")
	if len(wrapped) > rows {
		wrapped = wrapped[:rows]
		wrapped[rows-1] = ansi.Truncate(wrapped[rows-1]+"…", width, "…")
	}
	out := make([]string, len(wrapped))
	for i, line := range wrapped {
		out[i] = style.Render(line)
	}
	return out
}

// FormatValue renders v with one decimal below 100 and none above, then
// the unit. Percent signs attach directly to the number.
func FormatValue(v float64, unit string) string {
	var num string
	if math.Abs(v) >= 100 {
		num = fmt.Sprintf("%.0f", v)
	} else {
		num = fmt.Sprintf("%.1f", v)
	}
	switch unit {
	case "":
		return num
	case "%":
		return num + unit
	default:
		return num + " " + unit
	}
}

// formatTrend renders a trend as an arrow, the signed delta, and the
// percentage change.
func formatTrend(t metric.Trend) string {
	arrow := "▶"
	switch {
	case t.Delta > 0:
		arrow = "▲"
	case t.Delta < 0:
		arrow = "▼"
	}
	return fmt.Sprintf("%s %+.1f (%+.1f%%)", arrow, t.Delta, t.Percent)
}
