package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/monitor"
	"github.com/rileyhilliard/pulse/internal/stream"
	"github.com/spf13/cobra"
)

var (
	dashboardURLFlag        string
	dashboardStatusPollFlag string
)

// dashboardCmd opens the interactive dashboard.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "monitor"},
	Short:   "Open the live metrics dashboard",
	Long: `Open the interactive dashboard and stream metrics from the feed.

Widgets can be dragged with the mouse, resized from their edges and
corners, and rearranged from the keyboard. Changes are saved as you go.

Keyboard shortcuts:
  a           Add a widget
  tab         Select next widget
  arrows/hjkl Move selected widget
  HJKL        Resize selected widget
  f / b       Bring to front / send to back
  x           Remove selected widget
  t           Toggle dark/light theme
  r           Reconnect to the feed
  ?           Show help
  q / Ctrl+C  Quit

Examples:
  pulse dashboard
  pulse dashboard --url ws://metrics.local:4000/ws
  pulse dashboard --status-poll 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyDashboardFlags(cfg, dashboardURLFlag, dashboardStatusPollFlag); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return dashboardCommand(ctx, cfg)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardURLFlag, "url", "", "feed websocket URL (overrides feed.url)")
	dashboardCmd.Flags().StringVar(&dashboardStatusPollFlag, "status-poll", "", "how often the connection banner refreshes (e.g., 2s)")
	rootCmd.AddCommand(dashboardCmd)
}

// applyDashboardFlags folds command-line overrides into cfg and revalidates.
func applyDashboardFlags(cfg *config.Config, url, statusPoll string) error {
	if url != "" {
		cfg.Feed.URL = url
	}
	if statusPoll != "" {
		d, err := time.ParseDuration(statusPoll)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid status poll interval: "+statusPoll,
				"Use a valid duration like 1s, 2s, or 500ms")
		}
		cfg.Dashboard.StatusPoll = d
	}
	return config.Validate(cfg)
}

// wsConfig maps the feed section onto the websocket transport settings.
func wsConfig(f config.FeedConfig) stream.WSConfig {
	return stream.WSConfig{
		URL:               f.URL,
		ReconnectAttempts: f.ReconnectAttempts,
		ReconnectDelay:    f.ReconnectDelay,
		ReconnectDelayMax: f.ReconnectDelayMax,
		Timeout:           f.Timeout,
	}
}

// newSession wires a feed session to the configured websocket transport.
func newSession(f config.FeedConfig) *stream.Session {
	log := logger.NewEnvLogger("[stream]")
	return stream.NewSession(
		stream.WithTransport(stream.NewWSTransport(wsConfig(f), log)),
		stream.WithLogger(log),
	)
}

func dashboardCommand(ctx context.Context, cfg *config.Config) error {
	return monitor.Run(ctx, monitor.Options{
		Store:      openStore(cfg),
		Session:    newSession(cfg.Feed),
		StatusPoll: cfg.Dashboard.StatusPoll,
	})
}
