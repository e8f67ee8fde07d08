package stream

import (
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/metric"
)

// FeedCache holds the most recent snapshot pushed by the feed. Each push
// replaces the previous snapshot entirely; history lives in the dashboard
// store, not here.
type FeedCache struct {
	mu          sync.RWMutex
	values      metric.Snapshot
	lastUpdated time.Time
	now         func() time.Time
}

// NewFeedCache returns an empty cache.
func NewFeedCache() *FeedCache {
	return &FeedCache{
		values: make(metric.Snapshot),
		now:    time.Now,
	}
}

// Update replaces the cached snapshot and stamps the arrival time.
func (c *FeedCache) Update(snap metric.Snapshot) {
	values := make(metric.Snapshot, len(snap))
	for k, v := range snap {
		values[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = values
	c.lastUpdated = c.now()
}

// Value returns the cached reading for a metric, if any.
func (c *FeedCache) Value(n metric.Name) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[n]
	return v, ok
}

// Reading returns the value together with the snapshot arrival time.
func (c *FeedCache) Reading(n metric.Name) (metric.Reading, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[n]
	if !ok {
		return metric.Reading{}, false
	}
	return metric.Reading{Value: v, LastUpdated: c.lastUpdated}, true
}

// LastUpdated returns when the last snapshot arrived. The bool is false
// until the first snapshot.
func (c *FeedCache) LastUpdated() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated, !c.lastUpdated.IsZero()
}

// Reset drops every cached value.
func (c *FeedCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(metric.Snapshot)
	c.lastUpdated = time.Time{}
}
