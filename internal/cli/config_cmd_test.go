package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/pulse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.ConfigFileName)
	var buf bytes.Buffer

	require.NoError(t, configInit(&buf, path, false, false))

	assert.Contains(t, buf.String(), "Wrote "+path)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Feed, cfg.Feed)
	assert.Equal(t, config.DefaultConfig().Server, cfg.Server)
}

func TestConfigInit_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  url: ws://kept:1/ws\n"), 0644))

	err := configInit(&bytes.Buffer{}, path, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	data, _ := os.ReadFile(path)
	assert.Contains(t, string(data), "ws://kept:1/ws")

	require.NoError(t, configInit(&bytes.Buffer{}, path, true, false))
	data, _ = os.ReadFile(path)
	assert.NotContains(t, string(data), "ws://kept:1/ws")
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9100\"\n"), 0644))
	var buf bytes.Buffer

	require.NoError(t, configShow(&buf, path))

	out := buf.String()
	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, ":9100")
	assert.Contains(t, out, "url: ws://localhost:4000/ws", "defaults fill the rest")
	assert.Contains(t, out, "interval: 1s")
}

func TestConfigShow_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	var buf bytes.Buffer

	require.NoError(t, configShow(&buf, ""))

	assert.Contains(t, buf.String(), "# defaults")
}

func TestConfigSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Write(path, config.DefaultConfig()))
	var buf bytes.Buffer

	require.NoError(t, configSet(&buf, path, "feed.url", "wss://metrics.example.com/ws"))

	assert.Contains(t, buf.String(), "Set feed.url = wss://metrics.example.com/ws")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://metrics.example.com/ws", cfg.Feed.URL)
}

func TestConfigSet_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Write(path, config.DefaultConfig()))

	assert.Error(t, configSet(&bytes.Buffer{}, path, "feed.colour", "blue"))
	assert.Error(t, configSet(&bytes.Buffer{}, path, "server.interval", "soon"))
}

func TestConfigSet_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	err := configSet(&bytes.Buffer{}, "", "feed.url", "ws://x:1/ws")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pulse config init")
}
