package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build date of pulse.

Binaries built with "go install" carry no ldflags; their module version
and VCS revision are read from the embedded build info instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuild(debug.ReadBuildInfo)
		if versionJSON {
			return writeBuildJSON(cmd.OutOrStdout(), info)
		}
		printVersion(cmd.OutOrStdout(), info, versionShort)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build information as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	OSArch  string `json:"os_arch"`
}

// currentBuild merges the ldflags values with the module build info. ldflags win.
func currentBuild(read func() (*debug.BuildInfo, bool)) buildInfo {
	b := buildInfo{
		Version: version,
		Commit:  commit,
		Built:   date,
		Go:      runtime.Version(),
		OSArch:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := read()
	if !ok || bi == nil {
		return b
	}
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Built == "unknown" {
				b.Built = s.Value
			}
		}
	}
	return b
}

func printVersion(w io.Writer, b buildInfo, short bool) {
	if short {
		fmt.Fprintln(w, b.Version)
		return
	}

	fmt.Fprintf(w, "pulse %s\n", formatVersion(b.Version))
	fmt.Fprintf(w, "commit: %s\n", b.Commit)
	fmt.Fprintf(w, "built: %s\n", b.Built)
	fmt.Fprintf(w, "go: %s\n", b.Go)
	fmt.Fprintf(w, "os/arch: %s\n", b.OSArch)
}

func writeBuildJSON(w io.Writer, b buildInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// formatVersion ensures version has a 'v' prefix for display
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// GetVersion returns the current version string.
func GetVersion() string {
	return version
}
