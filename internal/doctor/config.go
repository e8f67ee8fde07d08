package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rileyhilliard/pulse/internal/config"
)

// ConfigFileCheck reports which config file is in use. Running on
// defaults is allowed, so a missing file is only a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
	// InitPath is where Fix writes a default config.
	InitPath string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", err),
			Suggestion: "Check the --config path, or drop it to use ./.pulse.yaml",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found; using defaults",
			Suggestion: "Run 'pulse config init' to write a .pulse.yaml you can edit",
			Fixable:    c.InitPath != "",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", filepath.Base(path)),
	}
}

// Fix writes the default config to InitPath.
func (c *ConfigFileCheck) Fix() error {
	if c.InitPath == "" {
		return nil
	}
	return config.Write(c.InitPath, config.DefaultConfig())
}

// ConfigSchemaCheck loads the effective config (file, env, defaults) and
// validates it.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %v", err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Schema error: %v", err),
			Suggestion: "Fix the value, or reset it with 'pulse config set <key> <value>'",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Schema valid",
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks creates all config-related checks. initPath is where
// --fix writes a default config when none is found.
func NewConfigChecks(configPath, initPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath, InitPath: initPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
