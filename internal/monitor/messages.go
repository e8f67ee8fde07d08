package monitor

import (
	"time"

	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/rileyhilliard/pulse/internal/stream"
)

// tickMsg polls the connection state.
type tickMsg time.Time

// spinnerTickMsg advances the connecting animation.
type spinnerTickMsg time.Time

// SampleMsg carries one sampled value from the sampler into the program.
type SampleMsg struct {
	Metric metric.Name
	Value  float64
	Meta   stream.Meta
}

// SampleErrorMsg carries a per-tick sampling failure.
type SampleErrorMsg struct {
	Metric metric.Name
	Err    error
}

// clearFlashMsg expires the status line message with the matching sequence.
type clearFlashMsg struct {
	seq int
}
