package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/feed"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serveAddrFlag     string
	serveIntervalFlag string
)

// serveCmd runs the metrics feed server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live system metrics over a websocket",
	Long: `Collect CPU, memory, and request metrics from this machine and
broadcast a snapshot to every connected dashboard on each tick.

Routes:
  /ws        websocket feed of metric snapshots
  /healthz   liveness check
  /metrics   Prometheus exposition of the same readings

Examples:
  pulse serve
  pulse serve --addr :9000
  pulse serve --interval 500ms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyServeFlags(cfg, serveAddrFlag, serveIntervalFlag); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveCommand(ctx, cmd.OutOrStdout(), cfg, feed.NewSystemCollector())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveIntervalFlag, "interval", "", "broadcast interval (overrides server.interval)")
	rootCmd.AddCommand(serveCmd)
}

func applyServeFlags(cfg *config.Config, addr, interval string) error {
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid broadcast interval: "+interval,
				"Use a valid duration like 1s or 500ms")
		}
		cfg.Server.Interval = d
	}
	return config.Validate(cfg)
}

// feedConfig maps the server section onto the feed server settings.
func feedConfig(s config.ServerConfig) feed.Config {
	return feed.Config{
		Addr:        s.Addr,
		Interval:    s.Interval,
		MetricsPath: s.MetricsPath,
	}
}

func serveCommand(ctx context.Context, out io.Writer, cfg *config.Config, collector feed.Collector) error {
	server := feed.NewServer(feedConfig(cfg.Server), collector,
		feed.WithLogger(logger.NewEnvLogger("[feed]")))

	fmt.Fprint(out, ui.RenderHeader(ui.HeaderInfo{
		Version: formatVersion(version),
		Tagline: "Metrics feed",
		Details: []string{
			"listening on " + cfg.Server.Addr,
			fmt.Sprintf("broadcasting every %s", cfg.Server.Interval),
			"routes: /ws /healthz " + cfg.Server.MetricsPath,
		},
	}))

	return server.Run(ctx)
}
