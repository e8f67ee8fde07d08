package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// FeedCheck dials the feed once and reads the system info frame every
// feed sends on connect.
type FeedCheck struct {
	URL     string
	Timeout time.Duration

	// Latency is the dial time of the last successful run.
	Latency time.Duration
}

func (c *FeedCheck) Name() string     { return "feed_reachable" }
func (c *FeedCheck) Category() string { return CategoryFeed }

func (c *FeedCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	conn, _, err := websocket.Dial(ctx, c.URL, nil)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot reach feed at %s: %v", c.URL, err),
			Suggestion: "Start one with 'pulse serve', or set feed.url to a running feed",
		}
	}
	defer conn.CloseNow()
	c.Latency = time.Since(start)

	_, data, err := conn.Read(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Connected to %s but nothing arrived: %v", c.URL, err),
			Suggestion: "The server at feed.url may not be a pulse feed",
		}
	}

	var msg metric.Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s sent a frame pulse doesn't understand", c.URL),
			Suggestion: "The server at feed.url may not be a pulse feed",
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")

	message := fmt.Sprintf("Feed reachable at %s", c.URL)
	if msg.Type == metric.TypeSystemInfo {
		var info metric.SystemInfo
		if json.Unmarshal(msg.Data, &info) == nil && info.TotalMemoryMB > 0 {
			message += fmt.Sprintf(", %d MB RAM", info.TotalMemoryMB)
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: message,
	}
}

func (c *FeedCheck) Fix() error {
	return nil
}

// NewFeedChecks creates the feed checks.
func NewFeedChecks(url string, timeout time.Duration) []Check {
	return []Check{&FeedCheck{URL: url, Timeout: timeout}}
}
