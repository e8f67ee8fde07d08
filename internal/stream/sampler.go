package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// Sampling conditions reported to error handlers. Match with errors.Is.
var (
	ErrNotConnected = errors.New(errors.ErrFeed,
		"Not connected to metrics feed",
		"Start the feed with 'pulse serve' or press 'r' to reconnect")
	ErrNoData = errors.New(errors.ErrFeed,
		"No data available for metric",
		"Wait for the next feed snapshot")
)

// Meta accompanies every sampled value.
type Meta struct {
	Timestamp        time.Time
	ConnectionStatus Status
}

// Callback receives sampled values.
type Callback func(value float64, meta Meta)

// ErrorHandler receives per-tick sampling failures.
type ErrorHandler func(n metric.Name, err error)

// SamplerStatus describes one metric's sampling loop.
type SamplerStatus struct {
	Active        bool
	Interval      time.Duration
	StartTime     time.Time
	EndTime       time.Time
	LastError     string
	LastErrorTime time.Time
}

// samplerTimer is one running ticker goroutine. status belongs to this
// timer only, so a superseded ticker never writes into its successor's.
type samplerTimer struct {
	n      metric.Name
	stop   chan struct{}
	done   chan struct{}
	cb     Callback
	onErr  ErrorHandler
	status *SamplerStatus
}

func newSamplerTimer(n metric.Name, interval time.Duration, cb Callback, onErr ErrorHandler) *samplerTimer {
	return &samplerTimer{
		n:     n,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		cb:    cb,
		onErr: onErr,
		status: &SamplerStatus{
			Active:    true,
			Interval:  interval,
			StartTime: time.Now(),
		},
	}
}

// Sampler runs at most one ticker per metric. Starting a metric that is
// already sampling stops the old ticker first, so the last subscriber wins.
// Start, Stop, and StopAll return only after the replaced or stopped
// tickers have exited, so no callback runs after they return.
//
// Callbacks run on the ticker goroutine. They must not call Stop or
// StopAll, and must not block on the goroutine that does.
type Sampler struct {
	conn  *Connection
	cache *FeedCache
	log   logger.Logger

	mu     sync.Mutex
	timers map[metric.Name]*samplerTimer
	status map[metric.Name]*SamplerStatus
	wg     sync.WaitGroup
}

// NewSampler creates a sampler reading from the session's cache and gated
// on the session's connection.
func NewSampler(s *Session) *Sampler {
	return &Sampler{
		conn:   s.conn,
		cache:  s.cache,
		log:    s.log,
		timers: make(map[metric.Name]*samplerTimer),
		status: make(map[metric.Name]*SamplerStatus),
	}
}

// Start begins sampling n every interval. Invalid arguments are logged and
// ignored.
func (s *Sampler) Start(n metric.Name, interval time.Duration, cb Callback, onErr ErrorHandler) {
	if n == "" || cb == nil || interval <= 0 {
		s.log.Error("invalid sampler parameters for %q (interval %s)", n, interval)
		return
	}

	t := newSamplerTimer(n, interval, cb, onErr)

	s.mu.Lock()
	old := s.stopLocked(n)
	s.timers[n] = t
	s.status[n] = t.status
	s.wg.Add(1)
	s.mu.Unlock()

	if old != nil {
		<-old.done
	}
	go s.run(interval, t)
}

// run is the ticker loop for one metric.
func (s *Sampler) run(interval time.Duration, t *samplerTimer) {
	defer s.wg.Done()
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			select {
			case <-t.stop:
				return
			default:
			}
			s.tick(t)
		}
	}
}

// tick performs a single sample for t.
func (s *Sampler) tick(t *samplerTimer) {
	n, cb := t.n, t.cb
	defer func() {
		if r := recover(); r != nil {
			s.fail(t, fmt.Errorf("%s: sampler callback panicked: %v", n, r))
		}
	}()

	state := s.conn.Status()
	if state.Status != StatusConnected {
		err := fmt.Errorf("%s: %w", n, ErrNotConnected)
		if state.LastError != "" {
			err = fmt.Errorf("%s: %s: %w", n, state.LastError, ErrNotConnected)
		}
		s.fail(t, err)
		return
	}

	reading, ok := s.cache.Reading(n)
	if !ok {
		s.fail(t, fmt.Errorf("%s: %w", n, ErrNoData))
		return
	}

	cb(reading.Value, Meta{
		Timestamp:        reading.LastUpdated,
		ConnectionStatus: state.Status,
	})
}

// fail records, logs, and reports a sampling failure. The ticker keeps
// running.
func (s *Sampler) fail(t *samplerTimer, err error) {
	s.mu.Lock()
	t.status.LastError = err.Error()
	t.status.LastErrorTime = time.Now()
	s.mu.Unlock()

	n, onErr := t.n, t.onErr
	s.log.Warn("sampling %s: %v", n, err)

	if onErr == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("error handler for %s panicked: %v", n, r)
		}
	}()
	onErr(n, err)
}

// Stop ends sampling for n and waits for its ticker to exit. No-op if n
// is not sampling.
func (s *Sampler) Stop(n metric.Name) {
	s.mu.Lock()
	t := s.stopLocked(n)
	s.mu.Unlock()

	if t != nil {
		<-t.done
	}
}

// stopLocked signals n's ticker to stop and returns it, or nil if n was not
// sampling. Must be called with s.mu held.
func (s *Sampler) stopLocked(n metric.Name) *samplerTimer {
	t, ok := s.timers[n]
	if !ok {
		return nil
	}
	close(t.stop)
	delete(s.timers, n)
	t.status.Active = false
	t.status.EndTime = time.Now()
	return t
}

// StopAll stops every ticker and waits for their goroutines to exit.
func (s *Sampler) StopAll() {
	s.mu.Lock()
	for n := range s.timers {
		s.stopLocked(n)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Active reports whether n currently has a running ticker.
func (s *Sampler) Active(n metric.Name) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[n]
	return ok
}

// Count returns the number of running tickers.
func (s *Sampler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Status returns a copy of n's sampling status.
func (s *Sampler) Status(n metric.Name) (SamplerStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[n]
	if !ok {
		return SamplerStatus{}, false
	}
	return *st, true
}
