package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrFeed,
		ErrStorage,
		ErrLayout,
		ErrWidget,
		ErrExec,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .pulse.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "feed error",
			code:       ErrFeed,
			message:    "Not connected to metrics feed",
			suggestion: "Start the feed with 'pulse serve'",
		},
		{
			name:       "widget error",
			code:       ErrWidget,
			message:    "Refresh interval out of range",
			suggestion: "Use a value between 1 and 60 seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, "Failed to save dashboard")

	assert.Equal(t, ErrExec, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.True(t, errors.Is(err, cause))
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapWithCode(cause, ErrStorage, "Cannot write config", "Check directory permissions")

	assert.Equal(t, ErrStorage, err.Code)
	assert.Equal(t, "Check directory permissions", err.Suggestion)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_Format(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := New(ErrFeed, "Feed unavailable", "")
		assert.Equal(t, "✗ Feed unavailable\n", err.Error())
	})

	t.Run("with cause and suggestion", func(t *testing.T) {
		err := WrapWithCode(errors.New("dial tcp: refused"), ErrFeed,
			"Cannot reach metrics feed", "Run 'pulse serve' first")
		out := err.Error()

		lines := strings.Split(out, "\n")
		assert.Equal(t, "✗ Cannot reach metrics feed", lines[0])
		assert.Contains(t, out, "  dial tcp: refused")
		assert.Contains(t, out, "  Run 'pulse serve' first")
		assert.True(t, strings.Index(out, "refused") < strings.Index(out, "pulse serve"),
			"cause should render before suggestion")
	})
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		expect bool
	}{
		{"nil error", nil, ErrConfig, false},
		{"plain error", errors.New("boom"), ErrConfig, false},
		{"matching code", New(ErrLayout, "overlap", ""), ErrLayout, true},
		{"different code", New(ErrLayout, "overlap", ""), ErrFeed, false},
		{"wrapped structured error", fmt.Errorf("outer: %w", New(ErrStorage, "bad blob", "")), ErrStorage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, IsCode(tt.err, tt.code))
		})
	}
}

func TestIsAs(t *testing.T) {
	sentinel := New(ErrFeed, "not connected", "")
	wrapped := fmt.Errorf("cpu_usage: %w", sentinel)

	assert.True(t, Is(wrapped, sentinel))

	var target *Error
	require.True(t, As(wrapped, &target))
	assert.Equal(t, ErrFeed, target.Code)
}
