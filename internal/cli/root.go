package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Real-time metrics dashboard for the terminal",
	Long: `pulse streams live system metrics from a feed server into a
free-form dashboard of line charts, gauges, and key-metric cards.

Start a feed on the machine you want to watch, then open the dashboard:

  pulse serve
  pulse dashboard

Widgets, positions, and the theme are saved between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColors()
		}
		if verbose {
			os.Setenv("PULSE_DEBUG", "1")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.pulse.yaml, then ~/.config/pulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves and validates the config for commands. Running
// without a config file is fine; defaults apply.
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if path != "" {
		logger.Default().Debug("using config %s", path)
	}
	return cfg, nil
}

// openStore opens the dashboard store under the configured storage dir.
func openStore(cfg *config.Config) *dashboard.Store {
	return dashboard.NewStore(
		dashboard.NewFileBlobStore(cfg.Storage.Dir),
		dashboard.WithStoreLogger(logger.NewEnvLogger("[store]")),
	)
}
