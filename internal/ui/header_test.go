package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{
		Version: "v1.2.0",
		Tagline: "Metrics feed",
		Details: []string{"listening on :4000", "websocket /ws"},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "pulse")
	assert.Contains(t, lines[0], "v1.2.0")
	assert.Contains(t, lines[1], "Metrics feed")
	assert.Contains(t, lines[2], "listening on :4000")
	assert.Contains(t, lines[4], strings.Repeat("━", HeaderWidth))
}

func TestRenderHeader_Minimal(t *testing.T) {
	out := RenderHeader(HeaderInfo{})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "pulse")
}
