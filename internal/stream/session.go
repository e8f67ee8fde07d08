package stream

import (
	"context"
	"sync"

	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// Transport carries the feed. Run blocks until ctx is cancelled, reporting
// lifecycle events and snapshots to sink.
type Transport interface {
	Run(ctx context.Context, sink Sink) error
	// Reconnect asks the transport to re-establish the link as soon as possible.
	Reconnect()
}

// Sink receives transport events.
type Sink interface {
	OnConnect()
	OnConnectError(reason string)
	OnDisconnect(reason string)
	OnReconnectAttempt(attempt int)
	OnSnapshot(snap metric.Snapshot)
	OnSystemInfo(info metric.SystemInfo)
}

// Session bundles the connection state and feed cache for one dashboard
// instance. Nothing is process-global: each Session is independent.
type Session struct {
	conn      *Connection
	cache     *FeedCache
	transport Transport
	log       logger.Logger

	mu      sync.Mutex
	info    metric.SystemInfo
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// Option configures a Session.
type Option func(*Session)

// WithTransport sets the transport that feeds the session. Without one the
// session stays initializing and RequestReconnect is a no-op.
func WithTransport(t Transport) Option {
	return func(s *Session) {
		s.transport = t
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// NewSession creates an idle session. Call Init to start the transport.
func NewSession(opts ...Option) *Session {
	s := &Session{
		log: logger.NewEnvLogger("[stream]"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conn = NewConnection(s.log)
	s.cache = NewFeedCache()
	return s
}

// Connection returns the session's connection state machine.
func (s *Session) Connection() *Connection {
	return s.conn
}

// Cache returns the session's feed cache.
func (s *Session) Cache() *FeedCache {
	return s.cache
}

// SystemInfo returns the last system_info frame received from the feed.
func (s *Session) SystemInfo() metric.SystemInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Init starts the transport in the background. Calling Init on a running
// session is a no-op.
func (s *Session) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.transport == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go func(done chan struct{}) {
		defer close(done)
		if err := s.transport.Run(ctx, s); err != nil {
			s.log.Error("transport stopped: %v", err)
		}
	}(s.done)
}

// Teardown stops the transport and waits for it to exit.
func (s *Session) Teardown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

// RequestReconnect moves the connection to connecting and asks the
// transport to re-establish the link. Repeated calls while connecting have
// no further effect.
func (s *Session) RequestReconnect() {
	if s.transport == nil {
		return
	}
	if !s.conn.Connecting() {
		return
	}
	s.log.Info("reconnect requested")
	s.transport.Reconnect()
}

// OnConnect implements Sink.
func (s *Session) OnConnect() {
	s.log.Info("connected to metrics feed")
	s.conn.Connected()
}

// OnConnectError implements Sink.
func (s *Session) OnConnectError(reason string) {
	s.log.Warn("connection error: %s", reason)
	s.conn.ConnectFailed(reason)
}

// OnDisconnect implements Sink.
func (s *Session) OnDisconnect(reason string) {
	s.log.Warn("disconnected: %s", reason)
	s.conn.Disconnected(reason)
}

// OnReconnectAttempt implements Sink.
func (s *Session) OnReconnectAttempt(attempt int) {
	s.log.Info("reconnection attempt %d", attempt)
	s.conn.ReconnectAttempt()
}

// OnSnapshot implements Sink.
func (s *Session) OnSnapshot(snap metric.Snapshot) {
	s.cache.Update(snap)
}

// OnSystemInfo implements Sink.
func (s *Session) OnSystemInfo(info metric.SystemInfo) {
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
	s.log.Debug("feed reports %d MB total memory", info.TotalMemoryMB)
}
