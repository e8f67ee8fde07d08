package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"github.com/rileyhilliard/pulse/internal/stream"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

var (
	statusURLFlag     string
	statusTimeoutFlag time.Duration
)

// statusPollInterval is how often the probe checks the session.
const statusPollInterval = 50 * time.Millisecond

// statusCmd reads one snapshot from the feed and prints it.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the feed and print the latest readings",
	Long: `Connect to the metrics feed, wait for one snapshot, and print each
metric with its severity.

Exits non-zero when the feed can't be reached or sends nothing before
the timeout.

Examples:
  pulse status
  pulse status --url ws://metrics.local:4000/ws --timeout 3s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if statusURLFlag != "" {
			cfg.Feed.URL = statusURLFlag
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}
		return statusCommand(cmd.Context(), cmd.OutOrStdout(), cfg.Feed, statusTimeoutFlag)
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusURLFlag, "url", "", "feed websocket URL (overrides feed.url)")
	statusCmd.Flags().DurationVar(&statusTimeoutFlag, "timeout", 5*time.Second, "how long to wait for a snapshot")
	rootCmd.AddCommand(statusCmd)
}

// statusCommand probes the feed once. A failed dial ends the probe
// immediately; retries are left to the dashboard.
func statusCommand(ctx context.Context, out io.Writer, feedCfg config.FeedConfig, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session := newSession(feedCfg)
	session.Init(ctx)
	defer session.Teardown()

	spinner := ui.NewSpinner("Connecting to " + feedCfg.URL)
	spinner.SetOutput(func(s string) { fmt.Fprint(out, s) })
	spinner.Start()

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			spinner.FailWith("no snapshot within " + timeout.String())
			return errors.New(errors.ErrFeed,
				"The metrics feed sent no data",
				"Start a feed with 'pulse serve', or raise --timeout")
		case <-ticker.C:
			if _, ok := session.Cache().LastUpdated(); ok {
				spinner.Success()
				printStatus(out, session)
				return nil
			}
			st := session.Connection().Status()
			if st.Status == stream.StatusError {
				spinner.FailWith(st.LastError)
				return errors.New(errors.ErrFeed,
					"Couldn't reach the metrics feed at "+feedCfg.URL,
					"Start a feed with 'pulse serve', or point feed.url at a running one")
			}
		}
	}
}

func printStatus(out io.Writer, session *stream.Session) {
	if info := session.SystemInfo(); info.TotalMemoryMB > 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("Total memory: %d MB", info.TotalMemoryMB)))
	}
	fmt.Fprintln(out, ui.RenderMetricTable(metricRows(session.Cache())))
}

// metricRows lists every metric in display order, with blanks for metrics
// the feed hasn't reported.
func metricRows(cache *stream.FeedCache) []ui.MetricRow {
	rows := make([]ui.MetricRow, 0, len(metric.All()))
	for _, m := range metric.All() {
		row := ui.MetricRow{Title: m.Title(), Status: metric.TierNeutral.String()}
		if v, ok := cache.Value(m); ok {
			row.Value = monitor.FormatValue(v, m.Unit())
			row.Status = m.ValueTier(v).String()
		}
		rows = append(rows, row)
	}
	return rows
}
