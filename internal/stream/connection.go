package stream

import (
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/logger"
)

// Status represents the lifecycle stage of the feed link.
type Status int

const (
	StatusInitializing Status = iota
	StatusConnecting
	StatusConnected
	StatusDisconnected
	StatusError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of the connection lifecycle.
type State struct {
	Status           Status
	LastError        string
	LastErrorTime    time.Time
	ReconnectAttempt int
}

// allowed lists the legal transitions. Nothing returns to initializing.
var allowed = map[Status]map[Status]bool{
	StatusInitializing: {StatusConnecting: true, StatusConnected: true, StatusError: true},
	StatusConnecting:   {StatusConnecting: true, StatusConnected: true, StatusError: true, StatusDisconnected: true},
	StatusConnected:    {StatusDisconnected: true, StatusError: true, StatusConnecting: true},
	StatusDisconnected: {StatusConnecting: true, StatusConnected: true, StatusError: true},
	StatusError:        {StatusConnecting: true, StatusConnected: true, StatusError: true},
}

// Connection tracks the lifecycle of the streaming link. Transitions are
// driven by transport events; readers poll Status.
type Connection struct {
	mu    sync.RWMutex
	state State
	log   logger.Logger
	now   func() time.Time
}

// NewConnection returns a connection in the initializing state.
func NewConnection(log logger.Logger) *Connection {
	if log == nil {
		log = logger.Default()
	}
	return &Connection{
		state: State{Status: StatusInitializing},
		log:   log,
		now:   time.Now,
	}
}

// Status returns a copy of the current state.
func (c *Connection) Status() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the link is currently established.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Status == StatusConnected
}

// Connecting moves to the connecting state without counting an attempt.
// Returns false if the connection was already connecting.
func (c *Connection) Connecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == StatusConnecting {
		return false
	}
	return c.transition(StatusConnecting)
}

// ReconnectAttempt records a transport reconnect attempt: the status becomes
// connecting and the attempt counter increments. Returns the new count.
func (c *Connection) ReconnectAttempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transition(StatusConnecting) {
		c.state.ReconnectAttempt++
	}
	return c.state.ReconnectAttempt
}

// Connected marks the link as established and clears the last error.
// The attempt counter is kept for diagnostics.
func (c *Connection) Connected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transition(StatusConnected) {
		c.state.LastError = ""
	}
}

// ConnectFailed records a failure to establish the link.
func (c *Connection) ConnectFailed(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transition(StatusError) {
		c.state.LastError = "Connection error: " + reason
		c.state.LastErrorTime = c.now()
	}
}

// Disconnected records the loss of an established link.
func (c *Connection) Disconnected(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transition(StatusDisconnected) {
		c.state.LastError = "Disconnected: " + reason
		c.state.LastErrorTime = c.now()
	}
}

// transition applies to if the edge is legal. Must be called with c.mu held.
func (c *Connection) transition(to Status) bool {
	from := c.state.Status
	if !allowed[from][to] {
		c.log.Debug("ignoring connection transition %s -> %s", from, to)
		return false
	}
	c.state.Status = to
	return true
}
