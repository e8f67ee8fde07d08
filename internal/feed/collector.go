// Package feed serves live system metrics to dashboards over a websocket.
// A snapshot of every metric is broadcast to all connected clients on a
// fixed cadence; each new client first receives a system_info frame.
package feed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Collector produces metric snapshots.
type Collector interface {
	Collect(ctx context.Context) (metric.Snapshot, error)
	TotalMemoryMB(ctx context.Context) (int64, error)
}

const bytesPerMB = 1024 * 1024

// SystemCollector reads host metrics with gopsutil. Latency is approximated
// by the outbound network rate; error rate and request count are synthetic.
type SystemCollector struct {
	mu       sync.Mutex
	lastTx   uint64
	lastTime time.Time
	rng      *rand.Rand
	now      func() time.Time
}

// NewSystemCollector returns a collector for the local host.
func NewSystemCollector() *SystemCollector {
	return &SystemCollector{
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now: time.Now,
	}
}

// Collect gathers one snapshot. Partial failures still return the metrics
// that could be read, along with an aggregated error.
func (c *SystemCollector) Collect(ctx context.Context) (metric.Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	snap := make(metric.Snapshot, len(metric.All()))
	var errs []string

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, fmt.Sprintf("cpu: %v", err))
	} else if len(pct) > 0 {
		snap[metric.CPUUsage] = round1(pct[0])
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("memory: %v", err))
	} else {
		snap[metric.MemoryUsage] = round1(float64(vm.Used) / bytesPerMB)
	}

	if rate, err := c.txRate(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("network: %v", err))
	} else {
		snap[metric.Latency] = rate
	}

	c.mu.Lock()
	snap[metric.ErrorRate] = float64(c.rng.IntN(3))
	snap[metric.RequestCount] = float64(c.rng.IntN(500))
	c.mu.Unlock()
	snap[metric.SuccessRate] = 100

	if len(errs) > 0 {
		return snap, fmt.Errorf("collect: %s", strings.Join(errs, "; "))
	}
	return snap, nil
}

// txRate returns outbound bytes per second since the previous call. The
// first call reports 0.
func (c *SystemCollector) txRate(ctx context.Context) (float64, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(counters) == 0 {
		return 0, nil
	}
	tx := counters[0].BytesSent
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	prevTx, prevTime := c.lastTx, c.lastTime
	c.lastTx, c.lastTime = tx, now

	if prevTime.IsZero() || tx < prevTx {
		return 0, nil
	}
	elapsed := now.Sub(prevTime).Seconds()
	if elapsed <= 0 {
		return 0, nil
	}
	return round1(float64(tx-prevTx) / elapsed), nil
}

// TotalMemoryMB returns physical memory in whole megabytes.
func (c *SystemCollector) TotalMemoryMB(ctx context.Context) (int64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(float64(vm.Total) / bytesPerMB)), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
