package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, show, and edit the pulse config file",
	Long: `Manage the pulse config file.

Lookup order: --config, then ./.pulse.yaml, then ~/.config/pulse/config.yaml.
Any key can also be set from the environment, e.g. PULSE_FEED_URL.

Examples:
  pulse config init
  pulse config show
  pulse config set feed.url ws://metrics.local:4000/ws
  pulse config path`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(".", config.ConfigFileName)
		if configInitGlobal {
			path = config.GlobalConfigPath()
			if path == "" {
				return errors.New(errors.ErrConfig,
					"Cannot locate your home directory",
					"Set HOME, or run without --global to write ./"+config.ConfigFileName)
			}
		}
		return configInit(cmd.OutOrStdout(), path, configInitForce, isInteractive())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShow(cmd.OutOrStdout(), cfgFile)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one key in the config file",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSet(cmd.OutOrStdout(), cfgFile, args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print which config file is in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file found; using defaults")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/pulse/config.yaml instead of ./.pulse.yaml")

	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configInit writes the default config to path. An existing file is only
// replaced with force, or after confirming when interactive.
func configInit(out io.Writer, path string, force, interactive bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		if !interactive {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := config.Write(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolComplete), path)
	return nil
}

func configShow(out io.Writer, explicit string) error {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintln(out, ui.MutedStyle().Render("# "+source))
	fmt.Fprint(out, string(data))
	return nil
}

func configSet(out io.Writer, explicit, key, value string) error {
	path, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to edit",
			"Run 'pulse config init' first")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Set %s = %s in %s\n", ui.SuccessStyle().Render(ui.SymbolComplete), key, value, path)
	return nil
}
