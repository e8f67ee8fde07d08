package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// feedReadLimit caps a single frame. Snapshots are a few hundred bytes.
const feedReadLimit = 1 << 20

// WSConfig controls the websocket transport.
type WSConfig struct {
	URL string
	// ReconnectAttempts caps consecutive reconnects after a failure.
	// Zero means unlimited.
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	ReconnectDelayMax time.Duration
	// Timeout bounds each dial.
	Timeout time.Duration
}

// DefaultWSConfig returns the transport defaults.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		URL:               "ws://localhost:4000/ws",
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		ReconnectDelayMax: 10 * time.Second,
		Timeout:           10 * time.Second,
	}
}

// WSTransport connects to the feed server over a websocket.
type WSTransport struct {
	cfg       WSConfig
	log       logger.Logger
	reconnect chan struct{}
}

// NewWSTransport creates a websocket transport. Zero-value fields in cfg
// are replaced with defaults.
func NewWSTransport(cfg WSConfig, log logger.Logger) *WSTransport {
	def := DefaultWSConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.ReconnectDelayMax <= 0 {
		cfg.ReconnectDelayMax = def.ReconnectDelayMax
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if log == nil {
		log = logger.NewEnvLogger("[feed-client]")
	}
	return &WSTransport{
		cfg:       cfg,
		log:       log,
		reconnect: make(chan struct{}, 1),
	}
}

// Reconnect implements Transport. It wakes a waiting retry loop, resets an
// exhausted one, or recycles a live connection.
func (t *WSTransport) Reconnect() {
	select {
	case t.reconnect <- struct{}{}:
	default:
	}
}

// Run implements Transport.
func (t *WSTransport) Run(ctx context.Context, sink Sink) error {
	bo := newBackoff(t.cfg.ReconnectDelay, t.cfg.ReconnectDelayMax, 2)
	attempts := 0
	immediate := true

	for {
		if !immediate {
			if t.cfg.ReconnectAttempts > 0 && attempts >= t.cfg.ReconnectAttempts {
				t.log.Warn("giving up after %d reconnection attempts; waiting for manual reconnect", attempts)
				select {
				case <-ctx.Done():
					return nil
				case <-t.reconnect:
					attempts = 0
					bo.reset()
				}
			} else {
				timer := time.NewTimer(bo.next())
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-t.reconnect:
					timer.Stop()
				case <-timer.C:
				}
			}
			attempts++
			sink.OnReconnectAttempt(attempts)
		}

		connected, recycled := t.session(ctx, sink)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			attempts = 0
			bo.reset()
		}
		// A recycled connection redials without waiting.
		immediate = recycled
	}
}

// session dials once and reads frames until the link drops. It reports
// whether the dial succeeded and whether the link was closed on request.
func (t *WSTransport) session(ctx context.Context, sink Sink) (connected, recycled bool) {
	dialCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	conn, _, err := websocket.Dial(dialCtx, t.cfg.URL, nil)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			sink.OnConnectError(err.Error())
		}
		return false, false
	}
	conn.SetReadLimit(feedReadLimit)

	// Drop any reconnect request that raced with the dial.
	select {
	case <-t.reconnect:
	default:
	}

	sink.OnConnect()

	readDone := make(chan struct{})
	requested := make(chan struct{})
	go func() {
		select {
		case <-t.reconnect:
			close(requested)
			_ = conn.Close(websocket.StatusNormalClosure, "reconnect requested")
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "shutting down")
		case <-readDone:
		}
	}()

	err = t.readLoop(ctx, conn, sink)
	close(readDone)

	select {
	case <-requested:
		return true, true
	default:
	}
	if ctx.Err() != nil {
		return true, false
	}
	sink.OnDisconnect(disconnectReason(err))
	return true, false
}

// readLoop decodes frames until the connection fails.
func (t *WSTransport) readLoop(ctx context.Context, conn *websocket.Conn, sink Sink) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var msg metric.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.log.Warn("dropping malformed frame: %v", err)
			continue
		}

		switch msg.Type {
		case metric.TypeSystemMetrics:
			snap, err := metric.ParseSnapshot(msg.Data)
			if err != nil {
				t.log.Warn("error processing metrics data: %v", err)
				continue
			}
			sink.OnSnapshot(snap)
		case metric.TypeSystemInfo:
			var info metric.SystemInfo
			if err := json.Unmarshal(msg.Data, &info); err != nil {
				t.log.Warn("dropping malformed system info: %v", err)
				continue
			}
			sink.OnSystemInfo(info)
		default:
			t.log.Debug("ignoring frame type %q", msg.Type)
		}
	}
}

// disconnectReason maps a read error to a short human-readable reason.
func disconnectReason(err error) string {
	if err == nil {
		return "transport close"
	}
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Code == websocket.StatusNormalClosure || ce.Code == websocket.StatusGoingAway {
			return "transport close"
		}
		return fmt.Sprintf("transport close (%d %s)", ce.Code, ce.Reason)
	}
	return "transport error: " + err.Error()
}
