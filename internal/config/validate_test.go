package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"future version", func(c *Config) { c.Version = CurrentConfigVersion + 1 }, "from the future"},
		{"empty feed url", func(c *Config) { c.Feed.URL = " " }, "feed.url is empty"},
		{"bad scheme", func(c *Config) { c.Feed.URL = "ftp://host/ws" }, "ws:// or wss://"},
		{"missing host", func(c *Config) { c.Feed.URL = "ws:///ws" }, "missing a host"},
		{"wss ok", func(c *Config) { c.Feed.URL = "wss://metrics.example.com/ws" }, ""},
		{"negative attempts", func(c *Config) { c.Feed.ReconnectAttempts = -1 }, "can't be negative"},
		{"unlimited attempts", func(c *Config) { c.Feed.ReconnectAttempts = 0 }, ""},
		{"zero delay", func(c *Config) { c.Feed.ReconnectDelay = 0 }, "feed.reconnect_delay must be positive"},
		{"max below delay", func(c *Config) { c.Feed.ReconnectDelayMax = 500 * time.Millisecond }, "shorter than"},
		{"zero timeout", func(c *Config) { c.Feed.Timeout = 0 }, "feed.timeout must be positive"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is empty"},
		{"zero interval", func(c *Config) { c.Server.Interval = 0 }, "server.interval must be positive"},
		{"relative metrics path", func(c *Config) { c.Server.MetricsPath = "metrics" }, "must start with '/'"},
		{"metrics path collides", func(c *Config) { c.Server.MetricsPath = "/ws" }, "collides"},
		{"empty storage", func(c *Config) { c.Storage.Dir = "" }, "storage.dir is empty"},
		{"negative poll", func(c *Config) { c.Dashboard.StatusPoll = -time.Second }, "dashboard.status_poll must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
