package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport drives a sink from the test.
type fakeTransport struct {
	mu         sync.Mutex
	sink       Sink
	reconnects int
	started    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{started: make(chan struct{})}
}

func (f *fakeTransport) Run(ctx context.Context, sink Sink) error {
	f.mu.Lock()
	f.sink = sink
	f.mu.Unlock()
	close(f.started)
	<-ctx.Done()
	return nil
}

func (f *fakeTransport) Reconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
}

func (f *fakeTransport) reconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

func TestSession_InitAndTeardown(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(WithTransport(ft), WithLogger(logger.Noop()))

	s.Init(context.Background())
	s.Init(context.Background())

	select {
	case <-ft.started:
	case <-time.After(time.Second):
		t.Fatal("transport did not start")
	}

	ft.sink.OnConnect()
	ft.sink.OnSnapshot(metric.Snapshot{metric.CPUUsage: 12})
	ft.sink.OnSystemInfo(metric.SystemInfo{TotalMemoryMB: 16384})

	assert.True(t, s.Connection().IsConnected())
	v, ok := s.Cache().Value(metric.CPUUsage)
	require.True(t, ok)
	assert.Equal(t, 12.0, v)
	assert.Equal(t, int64(16384), s.SystemInfo().TotalMemoryMB)

	s.Teardown()
	s.Teardown()
}

func TestSession_RequestReconnect(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(WithTransport(ft), WithLogger(logger.Noop()))

	s.OnConnect()
	s.OnDisconnect("transport close")

	s.RequestReconnect()
	assert.Equal(t, StatusConnecting, s.Connection().Status().Status)
	assert.Equal(t, 1, ft.reconnectCount())

	// Already connecting: no second signal.
	s.RequestReconnect()
	assert.Equal(t, 1, ft.reconnectCount())

	s.OnReconnectAttempt(1)
	assert.Equal(t, 1, s.Connection().Status().ReconnectAttempt)
}

func TestSession_RequestReconnectWithoutTransport(t *testing.T) {
	s := newTestSession()
	s.RequestReconnect()
	assert.Equal(t, StatusInitializing, s.Connection().Status().Status)
}

func TestSession_InitWithoutTransport(t *testing.T) {
	s := newTestSession()
	s.Init(context.Background())
	s.Teardown()
	assert.Equal(t, StatusInitializing, s.Connection().Status().Status)
}

func TestSession_Independent(t *testing.T) {
	a := newTestSession()
	b := newTestSession()

	a.OnConnect()
	a.OnSnapshot(metric.Snapshot{metric.CPUUsage: 1})

	assert.False(t, b.Connection().IsConnected())
	_, ok := b.Cache().Value(metric.CPUUsage)
	assert.False(t, ok)
}
