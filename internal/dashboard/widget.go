// Package dashboard owns the canonical widget collection, the per-metric
// time series, and the theme flag. Every mutation is written through to a
// blob store so the layout survives restarts.
package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// Type is the rendering variant of a widget.
type Type string

const (
	LineChart Type = "line_chart"
	Gauge     Type = "gauge"
	KeyMetric Type = "key_metric"
)

// Types returns every widget type in menu order.
func Types() []Type {
	return []Type{LineChart, Gauge, KeyMetric}
}

// Valid reports whether t is a known widget type.
func (t Type) Valid() bool {
	switch t {
	case LineChart, Gauge, KeyMetric:
		return true
	}
	return false
}

// Label returns a human-readable name for t.
func (t Type) Label() string {
	switch t {
	case LineChart:
		return "Line Chart"
	case Gauge:
		return "Gauge"
	case KeyMetric:
		return "Key Metric"
	default:
		return string(t)
	}
}

// ParseType converts a string into a widget Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(strings.ToLower(s)))
	if !t.Valid() {
		return "", errors.New(errors.ErrWidget,
			fmt.Sprintf("Unknown widget type: %q", s),
			"Use one of: line_chart, gauge, key_metric")
	}
	return t, nil
}

// Limits on widget settings.
const (
	MinWidth           = 200
	MinHeight          = 150
	MinRefreshInterval = 1
	MaxRefreshInterval = 60
)

// ErrInvalidWidget is returned when a widget fails validation.
var ErrInvalidWidget = errors.New(errors.ErrWidget,
	"Invalid widget",
	"Check the refresh interval (1-60s), size (at least 200x150), type, and metric")

// Position is the top-left corner of a widget in canvas pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a widget's extent in canvas pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Config holds the fields specific to one widget type. It is implemented by
// LineChartConfig, GaugeConfig, and KeyMetricConfig only.
type Config interface {
	widgetType() Type
}

// LineChartConfig configures a line chart.
type LineChartConfig struct {
	TimeWindowMinutes int
}

func (LineChartConfig) widgetType() Type { return LineChart }

// GaugeConfig configures a gauge.
type GaugeConfig struct {
	Min        float64
	Max        float64
	Thresholds metric.Thresholds
}

func (GaugeConfig) widgetType() Type { return Gauge }

// Percent maps v onto the gauge range, clamped to 0..100.
func (c GaugeConfig) Percent(v float64) float64 {
	span := c.Max - c.Min
	if span <= 0 {
		return 0
	}
	p := (v - c.Min) / span * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Tier classifies v against the gauge thresholds.
func (c GaugeConfig) Tier(v float64) metric.Tier {
	return c.Thresholds.Classify(v)
}

// KeyMetricConfig configures a single-value readout.
type KeyMetricConfig struct {
	Unit      string
	ShowTrend bool
}

func (KeyMetricConfig) widgetType() Type { return KeyMetric }

// Widget is one configured element on the dashboard.
type Widget struct {
	ID                     string
	Metric                 metric.Name
	Title                  string
	RefreshIntervalSeconds int
	Position               Position
	Size                   Size
	ZIndex                 int
	Config                 Config
}

// Type returns the widget's rendering variant, derived from its Config.
func (w Widget) Type() Type {
	if w.Config == nil {
		return ""
	}
	return w.Config.widgetType()
}

// Validate checks the widget's settings.
func (w Widget) Validate() error {
	var problems []string
	if w.ID == "" {
		problems = append(problems, "missing id")
	}
	if !w.Type().Valid() {
		problems = append(problems, "missing or unknown type")
	}
	if !w.Metric.Valid() {
		problems = append(problems, fmt.Sprintf("unknown metric %q", w.Metric))
	}
	if w.RefreshIntervalSeconds < MinRefreshInterval || w.RefreshIntervalSeconds > MaxRefreshInterval {
		problems = append(problems, fmt.Sprintf("refresh interval %ds out of range", w.RefreshIntervalSeconds))
	}
	if w.Position.X < 0 || w.Position.Y < 0 {
		problems = append(problems, "negative position")
	}
	if w.Size.Width < MinWidth || w.Size.Height < MinHeight {
		problems = append(problems, fmt.Sprintf("size %dx%d below %dx%d", w.Size.Width, w.Size.Height, MinWidth, MinHeight))
	}
	if lc, ok := w.Config.(LineChartConfig); ok && lc.TimeWindowMinutes < 1 {
		problems = append(problems, "time window must be at least 1 minute")
	}
	if g, ok := w.Config.(GaugeConfig); ok && g.Max <= g.Min {
		problems = append(problems, "gauge max must exceed min")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.WrapWithCode(ErrInvalidWidget, errors.ErrWidget,
		"Invalid widget: "+strings.Join(problems, "; "),
		ErrInvalidWidget.Suggestion)
}

// widgetJSON is the flattened persisted form. Type-specific fields sit
// beside the common ones and are present only for their type.
type widgetJSON struct {
	ID              string             `json:"id"`
	Type            Type               `json:"type"`
	Title           string             `json:"title"`
	Metric          metric.Name        `json:"metric"`
	RefreshInterval int                `json:"refreshInterval"`
	Position        Position           `json:"position"`
	Size            Size               `json:"size"`
	ZIndex          int                `json:"zIndex,omitempty"`
	TimeWindow      *int               `json:"timeWindow,omitempty"`
	Min             *float64           `json:"min,omitempty"`
	Max             *float64           `json:"max,omitempty"`
	Thresholds      *metric.Thresholds `json:"thresholds,omitempty"`
	Unit            *string            `json:"unit,omitempty"`
	ShowTrend       *bool              `json:"showTrend,omitempty"`
}

// MarshalJSON writes the flattened form.
func (w Widget) MarshalJSON() ([]byte, error) {
	out := widgetJSON{
		ID:              w.ID,
		Type:            w.Type(),
		Title:           w.Title,
		Metric:          w.Metric,
		RefreshInterval: w.RefreshIntervalSeconds,
		Position:        w.Position,
		Size:            w.Size,
		ZIndex:          w.ZIndex,
	}
	switch c := w.Config.(type) {
	case LineChartConfig:
		out.TimeWindow = &c.TimeWindowMinutes
	case GaugeConfig:
		out.Min, out.Max, out.Thresholds = &c.Min, &c.Max, &c.Thresholds
	case KeyMetricConfig:
		out.Unit, out.ShowTrend = &c.Unit, &c.ShowTrend
	default:
		return nil, fmt.Errorf("widget %s has no config", w.ID)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flattened form. Missing type-specific fields take
// the type defaults for the widget's metric.
func (w *Widget) UnmarshalJSON(data []byte) error {
	var in widgetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	def := DefaultConfig(in.Type, in.Metric)
	switch c := def.(type) {
	case LineChartConfig:
		if in.TimeWindow != nil {
			c.TimeWindowMinutes = *in.TimeWindow
		}
		def = c
	case GaugeConfig:
		if in.Min != nil {
			c.Min = *in.Min
		}
		if in.Max != nil {
			c.Max = *in.Max
		}
		if in.Thresholds != nil {
			c.Thresholds = *in.Thresholds
		}
		def = c
	case KeyMetricConfig:
		if in.Unit != nil {
			c.Unit = *in.Unit
		}
		if in.ShowTrend != nil {
			c.ShowTrend = *in.ShowTrend
		}
		def = c
	default:
		return fmt.Errorf("widget %s: unknown type %q", in.ID, in.Type)
	}

	*w = Widget{
		ID:                     in.ID,
		Metric:                 in.Metric,
		Title:                  in.Title,
		RefreshIntervalSeconds: in.RefreshInterval,
		Position:               in.Position,
		Size:                   in.Size,
		ZIndex:                 in.ZIndex,
		Config:                 def,
	}
	return nil
}
