package monitor

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/rileyhilliard/pulse/internal/stream"
)

// bridgeQueueSize bounds messages waiting for the program. Sampler values
// arrive at most a few per second per metric, so a full queue means the
// program has stalled.
const bridgeQueueSize = 256

// Bridge forwards sampler callbacks to the Bubble Tea program via
// program.Send(). This is goroutine-safe.
//
// Send never blocks: messages go onto a queue drained in order by one
// goroutine, and are dropped when the queue is full or no program is
// attached. Sampler callbacks therefore never wait on the Update loop,
// which itself waits on the sampler when it restarts tickers.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
	queue   chan tea.Msg
	done    chan struct{}
	closed  bool
	dropped int
}

// NewBridge creates a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the program that receives forwarded messages and starts the
// forwarding goroutine. Attaching nil, or attaching twice, is a no-op.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p == nil || b.program != nil || b.closed {
		return
	}
	b.program = p
	b.queue = make(chan tea.Msg, bridgeQueueSize)
	b.done = make(chan struct{})
	go b.forward(p, b.queue, b.done)
}

func (b *Bridge) forward(p *tea.Program, queue <-chan tea.Msg, done chan<- struct{}) {
	defer close(done)
	for msg := range queue {
		p.Send(msg)
	}
}

// Close stops forwarding and waits for queued messages to drain. Once the
// program has exited, its Send returns immediately, so this doesn't hang.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	queue, done := b.queue, b.done
	b.mu.Unlock()

	if queue != nil {
		close(queue)
		<-done
	}
}

// Send queues msg for the attached program.
func (b *Bridge) Send(msg tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.program == nil || b.closed {
		return
	}
	select {
	case b.queue <- msg:
	default:
		b.dropped++
	}
}

// Dropped returns how many messages were discarded because the queue was
// full.
func (b *Bridge) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Sample returns a sampler callback that forwards values for n.
func (b *Bridge) Sample(n metric.Name) stream.Callback {
	return func(value float64, meta stream.Meta) {
		b.Send(SampleMsg{Metric: n, Value: value, Meta: meta})
	}
}

// SampleError forwards sampler failures.
func (b *Bridge) SampleError(n metric.Name, err error) {
	b.Send(SampleErrorMsg{Metric: n, Err: err})
}
