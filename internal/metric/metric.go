// Package metric defines the fixed set of system metrics the dashboard can
// display, along with their display metadata and severity rules.
package metric

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/pulse/internal/errors"
)

// Name identifies one of the streamed metrics.
type Name string

// The metrics delivered by the feed on every snapshot.
const (
	CPUUsage     Name = "cpu_usage"
	MemoryUsage  Name = "memory_usage"
	Latency      Name = "latency"
	ErrorRate    Name = "error_rate"
	RequestCount Name = "request_count"
	SuccessRate  Name = "success_rate"
)

// all preserves the canonical display order.
var all = []Name{CPUUsage, MemoryUsage, Latency, ErrorRate, RequestCount, SuccessRate}

type info struct {
	title string
	unit  string
	max   float64
	// warn/crit are the key-metric value thresholds. When higherIsBetter is
	// set the comparison flips: values below warn/crit are degraded.
	warn, crit     float64
	higherIsBetter bool
	neutral        bool
}

var registry = map[Name]info{
	CPUUsage:     {title: "CPU Usage", unit: "%", max: 100, warn: 60, crit: 80},
	MemoryUsage:  {title: "Memory Usage", unit: "MB", max: 65536, warn: 6000, crit: 7000},
	Latency:      {title: "Request Latency", unit: "ms", max: 1000, warn: 200, crit: 500},
	ErrorRate:    {title: "Error Rate", unit: "errors/sec", max: 20, warn: 2, crit: 5},
	RequestCount: {title: "Request Count", unit: "req/sec", max: 1000, higherIsBetter: true, neutral: true},
	SuccessRate:  {title: "Success Rate", unit: "%", max: 100, warn: 95, crit: 90, higherIsBetter: true},
}

// All returns every known metric in display order.
func All() []Name {
	out := make([]Name, len(all))
	copy(out, all)
	return out
}

// Parse converts a string into a metric Name.
func Parse(s string) (Name, error) {
	n := Name(strings.TrimSpace(strings.ToLower(s)))
	if !n.Valid() {
		return "", errors.New(errors.ErrWidget,
			fmt.Sprintf("Unknown metric: %q", s),
			"Valid metrics: "+joinNames(all))
	}
	return n, nil
}

// Valid reports whether n is one of the known metrics.
func (n Name) Valid() bool {
	_, ok := registry[n]
	return ok
}

// String returns the wire name of the metric.
func (n Name) String() string {
	return string(n)
}

// Title returns the human readable title, falling back to the raw name.
func (n Name) Title() string {
	if i, ok := registry[n]; ok {
		return i.title
	}
	return string(n)
}

// Unit returns the display unit, or "" for unknown metrics.
func (n Name) Unit() string {
	return registry[n].unit
}

// Max returns the metric's nominal upper bound (used for gauge ranges).
// Unknown metrics default to 100.
func (n Name) Max() float64 {
	if i, ok := registry[n]; ok {
		return i.max
	}
	return 100
}

// HigherIsBetter reports whether an increase in the metric is good news.
func (n Name) HigherIsBetter() bool {
	return registry[n].higherIsBetter
}

// ValueTier classifies a key-metric reading. Request count is informational
// and always reports TierNeutral.
func (n Name) ValueTier(v float64) Tier {
	i, ok := registry[n]
	if !ok || i.neutral {
		return TierNeutral
	}
	if i.higherIsBetter {
		switch {
		case v < i.crit:
			return TierCritical
		case v < i.warn:
			return TierWarning
		default:
			return TierNormal
		}
	}
	switch {
	case v > i.crit:
		return TierCritical
	case v > i.warn:
		return TierWarning
	default:
		return TierNormal
	}
}

func joinNames(names []Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
