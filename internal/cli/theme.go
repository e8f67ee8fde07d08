package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/spf13/cobra"
)

// themeCmd shows or changes the saved dashboard theme.
var themeCmd = &cobra.Command{
	Use:   "theme [toggle|dark|light]",
	Short: "Show or change the dashboard theme",
	Long: `Show the saved dashboard theme, or change it.

Examples:
  pulse theme           # print the current theme
  pulse theme toggle
  pulse theme light`,
	ValidArgs: []string{"toggle", "dark", "light"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		action := ""
		if len(args) == 1 {
			action = args[0]
		}
		return themeCommand(cmd.OutOrStdout(), openStore(cfg), action)
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

// themeCommand applies action to the store. The store only toggles, so
// dark and light toggle when the current theme differs.
func themeCommand(out io.Writer, store *dashboard.Store, action string) error {
	dark := store.IsDarkMode()
	switch action {
	case "":
	case "toggle":
		dark = store.ToggleTheme()
	case "dark", "light":
		if themeName(dark) != action {
			dark = store.ToggleTheme()
		}
	default:
		return errors.New(errors.ErrExec,
			"Unknown theme: "+action,
			"Use toggle, dark, or light")
	}
	fmt.Fprintf(out, "Theme: %s\n", themeName(dark))
	return nil
}
