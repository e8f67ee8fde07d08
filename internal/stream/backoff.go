package stream

import "time"

// backoff produces exponentially increasing reconnect delays.
type backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	current    time.Duration
}

func newBackoff(initial, max time.Duration, multiplier float64) *backoff {
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	if multiplier < 1 {
		multiplier = 1
	}
	return &backoff{
		initial:    initial,
		max:        max,
		multiplier: multiplier,
		current:    initial,
	}
}

// next returns the delay to wait now and advances the sequence.
func (b *backoff) next() time.Duration {
	d := b.current
	b.current = time.Duration(float64(b.current) * b.multiplier)
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// reset starts the sequence over from the initial delay.
func (b *backoff) reset() {
	b.current = b.initial
}
