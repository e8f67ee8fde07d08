package stream

import (
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCache_Empty(t *testing.T) {
	c := NewFeedCache()

	_, ok := c.Value(metric.CPUUsage)
	assert.False(t, ok)

	_, ok = c.LastUpdated()
	assert.False(t, ok)
}

func TestFeedCache_UpdateReplacesSnapshot(t *testing.T) {
	c := NewFeedCache()
	stamp := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return stamp }

	c.Update(metric.Snapshot{metric.CPUUsage: 42, metric.MemoryUsage: 2048})
	v, ok := c.Value(metric.CPUUsage)
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	c.Update(metric.Snapshot{metric.Latency: 120})
	_, ok = c.Value(metric.CPUUsage)
	assert.False(t, ok, "metrics absent from the new snapshot are dropped")

	r, ok := c.Reading(metric.Latency)
	require.True(t, ok)
	assert.Equal(t, 120.0, r.Value)
	assert.Equal(t, stamp, r.LastUpdated)

	last, ok := c.LastUpdated()
	require.True(t, ok)
	assert.Equal(t, stamp, last)
}

func TestFeedCache_UpdateCopiesInput(t *testing.T) {
	c := NewFeedCache()
	snap := metric.Snapshot{metric.CPUUsage: 10}
	c.Update(snap)

	snap[metric.CPUUsage] = 99

	v, _ := c.Value(metric.CPUUsage)
	assert.Equal(t, 10.0, v)
}

func TestFeedCache_Reset(t *testing.T) {
	c := NewFeedCache()
	c.Update(metric.Snapshot{metric.CPUUsage: 10})
	c.Reset()

	_, ok := c.Value(metric.CPUUsage)
	assert.False(t, ok)
	_, ok = c.LastUpdated()
	assert.False(t, ok)
}
