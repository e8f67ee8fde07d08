package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .pulse.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Feed      FeedConfig      `yaml:"feed" mapstructure:"feed"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// FeedConfig controls the dashboard's connection to the metrics feed.
type FeedConfig struct {
	// URL of the feed server's websocket endpoint.
	URL string `yaml:"url" mapstructure:"url"`

	// ReconnectAttempts caps consecutive reconnects after the link drops.
	// Zero means keep trying forever.
	ReconnectAttempts int `yaml:"reconnect_attempts" mapstructure:"reconnect_attempts"`

	// ReconnectDelay is the first backoff delay; it doubles up to
	// ReconnectDelayMax.
	ReconnectDelay    time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`
	ReconnectDelayMax time.Duration `yaml:"reconnect_delay_max" mapstructure:"reconnect_delay_max"`

	// Timeout bounds each dial.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig controls `pulse serve`.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// Interval between snapshot broadcasts.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// MetricsPath serves the server's own Prometheus metrics.
	MetricsPath string `yaml:"metrics_path" mapstructure:"metrics_path"`
}

// StorageConfig controls where the dashboard layout is saved.
type StorageConfig struct {
	// Dir holds dashboard-config.json. Supports ~ and ${HOME}.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// DashboardConfig controls the terminal dashboard.
type DashboardConfig struct {
	// StatusPoll is how often the connection banner re-reads the link state.
	StatusPoll time.Duration `yaml:"status_poll" mapstructure:"status_poll"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Feed: FeedConfig{
			URL:               "ws://localhost:4000/ws",
			ReconnectAttempts: 5,
			ReconnectDelay:    time.Second,
			ReconnectDelayMax: 10 * time.Second,
			Timeout:           10 * time.Second,
		},
		Server: ServerConfig{
			Addr:        ":4000",
			Interval:    time.Second,
			MetricsPath: "/metrics",
		},
		Storage: StorageConfig{
			Dir: "~/.config/pulse",
		},
		Dashboard: DashboardConfig{
			StatusPoll: 2 * time.Second,
		},
	}
}

// fileConfig is the on-disk shape: durations are written as strings like
// "10s" so the file stays readable and round-trips through viper.
type fileConfig struct {
	Version int `yaml:"version"`
	Feed    struct {
		URL               string `yaml:"url"`
		ReconnectAttempts int    `yaml:"reconnect_attempts"`
		ReconnectDelay    string `yaml:"reconnect_delay"`
		ReconnectDelayMax string `yaml:"reconnect_delay_max"`
		Timeout           string `yaml:"timeout"`
	} `yaml:"feed"`
	Server struct {
		Addr        string `yaml:"addr"`
		Interval    string `yaml:"interval"`
		MetricsPath string `yaml:"metrics_path"`
	} `yaml:"server"`
	Storage struct {
		Dir string `yaml:"dir"`
	} `yaml:"storage"`
	Dashboard struct {
		StatusPoll string `yaml:"status_poll"`
	} `yaml:"dashboard"`
}

// MarshalYAML implements yaml.Marshaler.
func (c Config) MarshalYAML() (any, error) {
	var f fileConfig
	f.Version = c.Version
	f.Feed.URL = c.Feed.URL
	f.Feed.ReconnectAttempts = c.Feed.ReconnectAttempts
	f.Feed.ReconnectDelay = c.Feed.ReconnectDelay.String()
	f.Feed.ReconnectDelayMax = c.Feed.ReconnectDelayMax.String()
	f.Feed.Timeout = c.Feed.Timeout.String()
	f.Server.Addr = c.Server.Addr
	f.Server.Interval = c.Server.Interval.String()
	f.Server.MetricsPath = c.Server.MetricsPath
	f.Storage.Dir = c.Storage.Dir
	f.Dashboard.StatusPoll = c.Dashboard.StatusPoll.String()
	return f, nil
}
