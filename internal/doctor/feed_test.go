package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/feed"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
)

type fixedCollector struct{}

func (fixedCollector) Collect(context.Context) (metric.Snapshot, error) {
	return metric.Snapshot{}, nil
}

func (fixedCollector) TotalMemoryMB(context.Context) (int64, error) {
	return 16384, nil
}

func wsURL(hs *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(hs.URL, "http") + path
}

func TestFeedCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable", func(t *testing.T) {
		server := feed.NewServer(feed.Config{Interval: time.Second, MetricsPath: "/metrics"}, fixedCollector{},
			feed.WithLogger(logger.Noop()))
		hs := httptest.NewServer(server.Handler())
		defer hs.Close()
		defer server.Close()

		check := &FeedCheck{URL: wsURL(hs, "/ws"), Timeout: 2 * time.Second}
		result := check.Run(ctx)

		if result.Status != StatusPass {
			t.Fatalf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
		if !strings.Contains(result.Message, "16384 MB RAM") {
			t.Errorf("expected memory in message, got %q", result.Message)
		}
		if check.Latency <= 0 {
			t.Error("expected latency to be recorded")
		}
	})

	t.Run("not a websocket", func(t *testing.T) {
		hs := httptest.NewServer(http.NotFoundHandler())
		defer hs.Close()

		result := (&FeedCheck{URL: wsURL(hs, "/ws"), Timeout: time.Second}).Run(ctx)
		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		hs := httptest.NewServer(http.NotFoundHandler())
		url := wsURL(hs, "/ws")
		hs.Close()

		result := (&FeedCheck{URL: url, Timeout: time.Second}).Run(ctx)
		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
		if !strings.Contains(result.Message, "Cannot reach feed") {
			t.Errorf("unexpected message %q", result.Message)
		}
	})

	t.Run("name and category", func(t *testing.T) {
		check := NewFeedChecks("ws://localhost:4000/ws", time.Second)[0]
		if check.Name() != "feed_reachable" || check.Category() != CategoryFeed {
			t.Errorf("got %s/%s", check.Name(), check.Category())
		}
	})
}
