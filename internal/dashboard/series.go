package dashboard

import (
	"time"

	"github.com/rileyhilliard/pulse/internal/metric"
)

// Series retention bounds. Both apply after every append.
const (
	SeriesHorizon   = 10 * time.Minute
	SeriesMaxPoints = 300
)

// Point is one sampled value.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is the retained history for one metric, oldest first.
type Series []Point

// appendRetained appends p and trims the result to the retention bounds
// relative to p's timestamp. Points exactly at the horizon are dropped.
func appendRetained(s Series, p Point) Series {
	cutoff := p.Timestamp.Add(-SeriesHorizon)

	out := make(Series, 0, len(s)+1)
	for _, q := range s {
		if q.Timestamp.After(cutoff) {
			out = append(out, q)
		}
	}
	out = append(out, p)

	if len(out) > SeriesMaxPoints {
		out = out[len(out)-SeriesMaxPoints:]
	}
	return out
}

// Since returns the points newer than t.
func (s Series) Since(t time.Time) Series {
	for i, p := range s {
		if p.Timestamp.After(t) {
			return s[i:]
		}
	}
	return nil
}

// Latest returns the newest point.
func (s Series) Latest() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Trend compares the two newest points. The bool is false with fewer than
// two points.
func (s Series) Trend() (metric.Trend, bool) {
	if len(s) < 2 {
		return metric.Trend{}, false
	}
	return metric.TrendOf(s[len(s)-2].Value, s[len(s)-1].Value), true
}

// Values returns just the values, oldest first.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}
