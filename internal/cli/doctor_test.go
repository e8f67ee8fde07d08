package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/doctor"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyConfig(t *testing.T, feedURL string) string {
	t.Helper()
	dir := t.TempDir()
	content := "feed:\n  url: " + feedURL + "\n  timeout: 2s\nstorage:\n  dir: " + dir + "\n"
	path := filepath.Join(t.TempDir(), "pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDoctorCommand_AllClear(t *testing.T) {
	url := startFeed(t, staticCollector{snap: metric.Snapshot{}, total: 8192}, false)
	var buf bytes.Buffer

	err := doctorCommand(context.Background(), &buf, doctorOptions{configPath: healthyConfig(t, url)})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "pulse Diagnostic Report")
	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "STORAGE")
	assert.Contains(t, out, "FEED")
	assert.NotContains(t, out, "TERMINAL")
	assert.Contains(t, out, "8192 MB RAM")
	assert.Contains(t, out, "Everything looks good")
}

func TestDoctorCommand_JSON(t *testing.T) {
	url := startFeed(t, staticCollector{total: 8192}, false)
	var buf bytes.Buffer

	err := doctorCommand(context.Background(), &buf, doctorOptions{configPath: healthyConfig(t, url), json: true})
	require.NoError(t, err)

	var output DoctorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Categories, 3)
	assert.Equal(t, "CONFIG", output.Categories[0].Name)
	assert.Equal(t, "FEED", output.Categories[2].Name)
	assert.True(t, output.Summary.AllClear)
	assert.Equal(t, 5, output.Summary.Pass)
}

func TestDoctorCommand_FeedDownFails(t *testing.T) {
	var buf bytes.Buffer
	path := healthyConfig(t, "ws://127.0.0.1:1/ws")

	err := doctorCommand(context.Background(), &buf, doctorOptions{configPath: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 check failed")
	assert.Contains(t, buf.String(), "Cannot reach feed")
	assert.Contains(t, buf.String(), "1 issue found")
}

func TestDoctorCommand_FixCreatesConfigAndStorage(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)
	url := startFeed(t, staticCollector{total: 8192}, false)
	t.Setenv("PULSE_FEED_URL", url)

	var before bytes.Buffer
	require.NoError(t, doctorCommand(context.Background(), &before, doctorOptions{initPath: ".pulse.yaml", json: true}))

	var report DoctorOutput
	require.NoError(t, json.Unmarshal(before.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.Fixable, "missing config and storage dir")

	var buf bytes.Buffer
	err := doctorCommand(context.Background(), &buf, doctorOptions{initPath: ".pulse.yaml", fix: true})

	require.NoError(t, err)
	assert.FileExists(t, ".pulse.yaml")
	assert.DirExists(t, filepath.Join(home, ".config", "pulse"))
}

func TestRenderCheckResult(t *testing.T) {
	var buf bytes.Buffer

	renderCheckResult(&buf, doctor.CheckResult{
		Status:     doctor.StatusWarn,
		Message:    "Output is not a terminal",
		Suggestion: "line one\nline two",
	}, "")

	out := buf.String()
	assert.Contains(t, out, "Output is not a terminal")
	assert.Contains(t, out, "    line one\n")
	assert.Contains(t, out, "    line two\n")
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "500µs", formatLatency(500*time.Microsecond))
	assert.Equal(t, "42ms", formatLatency(42*time.Millisecond))
	assert.Equal(t, "1.5s", formatLatency(1500*time.Millisecond))
}
