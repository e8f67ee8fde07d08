package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/rileyhilliard/pulse/internal/doctor"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, storage, feed, and terminal problems",
	Long: `Run diagnostic checks and report what's wrong.

Checks the config file and schema, the dashboard storage directory and
saved layout, whether the metrics feed answers, and whether the terminal
can host the dashboard. --fix creates a missing storage directory and
writes a default .pulse.yaml when there is none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorOptions{
			configPath: cfgFile,
			initPath:   config.ConfigFileName,
			fix:        doctorFix,
			json:       doctorJSON,
			terminal:   os.Stdout,
		})
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

type doctorOptions struct {
	configPath string
	initPath   string
	fix        bool
	json       bool
	terminal   *os.File
}

// doctorCommand runs every check and reports. It returns an error when any
// check fails so scripts can gate on the exit code.
func doctorCommand(ctx context.Context, out io.Writer, opts doctorOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := collectChecks(opts)
	results := doctor.RunAllParallel(ctx, checks)
	if opts.fix {
		results = doctor.Fix(ctx, checks, results)
	}

	var err error
	if opts.json {
		err = outputDoctorJSON(out, checks, results)
	} else {
		outputDoctorText(out, checks, results, opts.fix)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		n := doctor.CountByStatus(results)[doctor.StatusFail]
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%d check%s failed", n, pluralSuffix(n)),
			"Fix the items marked "+ui.SymbolFail+" above")
	}
	return nil
}

// collectChecks builds the check list. A config that fails to load still
// gets storage and feed checks against the defaults; the schema check
// reports the load error.
func collectChecks(opts doctorOptions) []doctor.Check {
	cfg, _, err := config.LoadOrDefault(opts.configPath)
	if err != nil || config.Validate(cfg) != nil {
		cfg = config.DefaultConfig()
	}

	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(opts.configPath, opts.initPath)...)
	checks = append(checks, doctor.NewStorageChecks(cfg.Storage.Dir)...)
	checks = append(checks, doctor.NewFeedChecks(cfg.Feed.URL, cfg.Feed.Timeout)...)
	if opts.terminal != nil {
		checks = append(checks, doctor.NewTerminalChecks(opts.terminal)...)
	}
	return checks
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := doctor.GroupByCategory(checks)

	output := DoctorOutput{Categories: []CategoryOutput{}}
	for _, cat := range doctor.Categories() {
		indices, ok := grouped[cat]
		if !ok {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, idx := range indices {
			co.Results = append(co.Results, results[idx])
		}
		output.Categories = append(output.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("pulse Diagnostic Report"))
	fmt.Fprintln(out)

	grouped := doctor.GroupByCategory(checks)
	for _, category := range doctor.Categories() {
		indices, ok := grouped[category]
		if !ok {
			continue
		}

		fmt.Fprintln(out, headerStyle.Render(category))
		for _, idx := range indices {
			line := ""
			if fc, ok := checks[idx].(*doctor.FeedCheck); ok && results[idx].Status == doctor.StatusPass {
				line = mutedStyle.Render(fmt.Sprintf("(%s)", formatLatency(fc.Latency)))
			}
			renderCheckResult(out, results[idx], line)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(out, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(out, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))

		if doctor.FixableCount(results) > 0 && !fixed {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Run with %s to attempt automatic fixes where possible.\n",
				mutedStyle.Render("--fix"))
		}
	}
	fmt.Fprintln(out)
}

// renderCheckResult renders a single check result. suffix is appended to
// the message line when non-empty.
func renderCheckResult(out io.Writer, result doctor.CheckResult, suffix string) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolComplete
		style = ui.SuccessStyle()
	case doctor.StatusWarn:
		symbol = ui.SymbolWarning
		style = ui.WarningStyle()
	default:
		symbol = ui.SymbolFail
		style = ui.ErrorStyle()
	}

	line := fmt.Sprintf("  %s %s", style.Render(symbol), result.Message)
	if suffix != "" {
		line += " " + suffix
	}
	fmt.Fprintln(out, line)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, l := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", ui.MutedStyle().Render(l))
		}
	}
}

// formatLatency rounds a dial time for display.
func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// pluralSuffix returns "s" if n != 1.
func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
