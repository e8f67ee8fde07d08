package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeCommand(t *testing.T) {
	store := newTestStore(t)

	steps := []struct {
		action string
		want   string
		dark   bool
	}{
		{"", "Theme: light", false},
		{"dark", "Theme: dark", true},
		{"dark", "Theme: dark", true},
		{"toggle", "Theme: light", false},
		{"light", "Theme: light", false},
		{"toggle", "Theme: dark", true},
	}
	for _, step := range steps {
		var buf bytes.Buffer
		require.NoError(t, themeCommand(&buf, store, step.action), step.action)
		assert.Equal(t, step.want+"\n", buf.String(), step.action)
		assert.Equal(t, step.dark, store.IsDarkMode(), step.action)
	}
}

func TestThemeCommand_Unknown(t *testing.T) {
	store := newTestStore(t)

	err := themeCommand(&bytes.Buffer{}, store, "solarized")

	require.Error(t, err)
	assert.False(t, store.IsDarkMode())
}

func TestThemeCommand_Persists(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	require.NoError(t, themeCommand(&bytes.Buffer{}, openStore(cfg), "dark"))

	assert.True(t, openStore(cfg).IsDarkMode(), "a fresh store reads the saved theme")
}
