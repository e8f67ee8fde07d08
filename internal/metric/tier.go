package metric

// Tier is the severity band a value falls into.
type Tier int

const (
	TierNormal Tier = iota
	TierWarning
	TierCritical
	TierNeutral
)

// String returns the tier label used by the presentation layer.
func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierWarning:
		return "warning"
	case TierCritical:
		return "critical"
	case TierNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// Thresholds holds the warning and critical levels for a gauge or chart.
type Thresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// Classify returns critical when v reaches the critical level, warning when
// it reaches the warning level, and normal otherwise.
func (t Thresholds) Classify(v float64) Tier {
	switch {
	case v >= t.Critical:
		return TierCritical
	case v >= t.Warning:
		return TierWarning
	default:
		return TierNormal
	}
}

// ThresholdsFor returns thresholds at the given fractions of max.
func ThresholdsFor(max, warnFrac, critFrac float64) Thresholds {
	return Thresholds{Warning: max * warnFrac, Critical: max * critFrac}
}

// Trend describes the change between the two most recent readings.
type Trend struct {
	Delta   float64
	Percent float64
}

// TrendOf computes the trend from previous to latest. Percent is 0 when the
// previous value is 0.
func TrendOf(previous, latest float64) Trend {
	t := Trend{Delta: latest - previous}
	if previous != 0 {
		t.Percent = t.Delta / previous * 100
	}
	return t
}

// Tier classifies the trend for metric n: flat is neutral, movement in the
// metric's good direction is normal, the other direction is critical.
func (t Trend) Tier(n Name) Tier {
	if t.Delta == 0 {
		return TierNeutral
	}
	rising := t.Delta > 0
	if rising == n.HigherIsBetter() {
		return TierNormal
	}
	return TierCritical
}
