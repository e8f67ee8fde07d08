package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".pulse.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/pulse"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides: PULSE_FEED_URL sets feed.url.
	EnvPrefix = "PULSE"
)

// Load reads config from the specified path. Environment overrides apply
// on top of the file.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'pulse config init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Parse reads config from YAML bytes. Used to check an edit before it is
// written.
func Parse(data []byte) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config",
			"Check the YAML syntax")
	}
	return parseConfig(v, "config")
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .pulse.yaml in current directory
// 3. ~/.config/pulse/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Global config
	if path := GlobalConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// GlobalConfigPath returns ~/.config/pulse/config.yaml, or empty if the
// home directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads config from the found path, or returns defaults
// (with environment overrides) if none exists. Returns the path used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	// Viper decodes "10s" style strings into time.Duration fields.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+source)
	}

	cfg.Storage.Dir = ExpandTilde(Expand(cfg.Storage.Dir))
	return cfg, nil
}

// setDefaults registers every known key so environment overrides and
// partial files merge over the defaults.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("feed.url", def.Feed.URL)
	v.SetDefault("feed.reconnect_attempts", def.Feed.ReconnectAttempts)
	v.SetDefault("feed.reconnect_delay", def.Feed.ReconnectDelay.String())
	v.SetDefault("feed.reconnect_delay_max", def.Feed.ReconnectDelayMax.String())
	v.SetDefault("feed.timeout", def.Feed.Timeout.String())
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.interval", def.Server.Interval.String())
	v.SetDefault("server.metrics_path", def.Server.MetricsPath)
	v.SetDefault("storage.dir", def.Storage.Dir)
	v.SetDefault("dashboard.status_poll", def.Dashboard.StatusPoll.String())
}

// Keys returns every settable config key in file order.
func Keys() []string {
	return []string{
		"feed.url",
		"feed.reconnect_attempts",
		"feed.reconnect_delay",
		"feed.reconnect_delay_max",
		"feed.timeout",
		"server.addr",
		"server.interval",
		"server.metrics_path",
		"storage.dir",
		"dashboard.status_poll",
	}
}

// IsKey reports whether key is a settable config key.
func IsKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
