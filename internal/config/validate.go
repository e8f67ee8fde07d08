package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	// Check version
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pulse only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest pulse release")
	}

	if err := validateFeed(cfg.Feed); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'feed' section in your .pulse.yaml.")
	}

	if err := validateServer(cfg.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'server' section in your .pulse.yaml.")
	}

	if strings.TrimSpace(cfg.Storage.Dir) == "" {
		return errors.New(errors.ErrConfig,
			"storage.dir is empty - pulse needs somewhere to save the dashboard",
			"Set storage.dir, e.g. '~/.config/pulse'.")
	}

	if err := validateInterval("dashboard.status_poll", cfg.Dashboard.StatusPoll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dashboard' section in your .pulse.yaml.")
	}

	return nil
}

// validateFeed checks the transport settings.
func validateFeed(feed FeedConfig) error {
	if strings.TrimSpace(feed.URL) == "" {
		return fmt.Errorf("feed.url is empty - the dashboard needs a feed to connect to")
	}
	u, err := url.Parse(feed.URL)
	if err != nil {
		return fmt.Errorf("feed.url '%s' doesn't parse as a URL: %v", feed.URL, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("feed.url '%s' needs a ws:// or wss:// scheme", feed.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("feed.url '%s' is missing a host", feed.URL)
	}

	if feed.ReconnectAttempts < 0 {
		return fmt.Errorf("feed.reconnect_attempts can't be negative - use 0 for unlimited")
	}
	if err := validateInterval("feed.reconnect_delay", feed.ReconnectDelay); err != nil {
		return err
	}
	if err := validateInterval("feed.reconnect_delay_max", feed.ReconnectDelayMax); err != nil {
		return err
	}
	if feed.ReconnectDelayMax < feed.ReconnectDelay {
		return fmt.Errorf("feed.reconnect_delay_max (%v) is shorter than feed.reconnect_delay (%v)", feed.ReconnectDelayMax, feed.ReconnectDelay)
	}
	return validateInterval("feed.timeout", feed.Timeout)
}

// validateServer checks `pulse serve` settings.
func validateServer(server ServerConfig) error {
	if strings.TrimSpace(server.Addr) == "" {
		return fmt.Errorf("server.addr is empty - try ':4000'")
	}
	if err := validateInterval("server.interval", server.Interval); err != nil {
		return err
	}
	if !strings.HasPrefix(server.MetricsPath, "/") {
		return fmt.Errorf("server.metrics_path '%s' must start with '/'", server.MetricsPath)
	}
	if server.MetricsPath == "/ws" || server.MetricsPath == "/healthz" {
		return fmt.Errorf("server.metrics_path '%s' collides with a built-in route", server.MetricsPath)
	}
	return nil
}

func validateInterval(key string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive - try something like '1s' or '500ms'", key)
	}
	return nil
}
