package dashboard

import "github.com/rileyhilliard/pulse/internal/metric"

// Defaults applied to new widgets.
const (
	DefaultRefreshInterval = 2
	DefaultTimeWindow      = 5
)

// presetPositions is cycled through when placing new widgets.
var presetPositions = []Position{
	{X: 20, Y: 20},
	{X: 340, Y: 20},
	{X: 660, Y: 20},
	{X: 20, Y: 290},
	{X: 340, Y: 290},
	{X: 660, Y: 290},
}

// PresetPosition returns the preset slot for the i-th widget.
func PresetPosition(i int) Position {
	if i < 0 {
		i = -i
	}
	return presetPositions[i%len(presetPositions)]
}

// DefaultSize returns the initial size for a widget type.
func DefaultSize(t Type) Size {
	switch t {
	case LineChart:
		return Size{Width: 300, Height: 250}
	case Gauge:
		return Size{Width: 300, Height: 250}
	case KeyMetric:
		return Size{Width: 250, Height: 250}
	default:
		return Size{Width: 300, Height: 250}
	}
}

// DefaultConfig returns the type-specific defaults for a widget showing m.
// Gauge thresholds sit at 75% and 90% of the metric's max. Returns nil for
// an unknown type.
func DefaultConfig(t Type, m metric.Name) Config {
	switch t {
	case LineChart:
		return LineChartConfig{TimeWindowMinutes: DefaultTimeWindow}
	case Gauge:
		max := m.Max()
		return GaugeConfig{
			Min:        0,
			Max:        max,
			Thresholds: metric.ThresholdsFor(max, 0.75, 0.9),
		}
	case KeyMetric:
		return KeyMetricConfig{Unit: m.Unit(), ShowTrend: true}
	default:
		return nil
	}
}

// LineThresholds returns the warning and critical levels drawn on a line
// chart for m.
func LineThresholds(m metric.Name) metric.Thresholds {
	return metric.ThresholdsFor(m.Max(), 0.8, 0.9)
}

// newWidget builds a widget with defaults for slot i.
func newWidget(id string, t Type, m metric.Name, slot int) Widget {
	return Widget{
		ID:                     id,
		Metric:                 m,
		Title:                  m.Title(),
		RefreshIntervalSeconds: DefaultRefreshInterval,
		Position:               PresetPosition(slot),
		Size:                   DefaultSize(t),
		Config:                 DefaultConfig(t, m),
	}
}

// DefaultWidgets returns the starter layout: CPU line chart, memory gauge,
// and error rate readout. ids supplies one identifier per widget.
func DefaultWidgets(ids func() string) []Widget {
	return []Widget{
		newWidget(ids(), LineChart, metric.CPUUsage, 0),
		newWidget(ids(), Gauge, metric.MemoryUsage, 1),
		newWidget(ids(), KeyMetric, metric.ErrorRate, 2),
	}
}
