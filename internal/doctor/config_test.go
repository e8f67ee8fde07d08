package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigFileCheck(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	t.Run("explicit path missing", func(t *testing.T) {
		check := &ConfigFileCheck{ConfigPath: filepath.Join(tmpDir, "nonexistent.yaml")}
		result := check.Run(ctx)

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
	})

	t.Run("config found", func(t *testing.T) {
		cfgPath := filepath.Join(tmpDir, ".pulse.yaml")
		if err := os.WriteFile(cfgPath, []byte("feed:\n  url: ws://localhost:4000/ws\n"), 0644); err != nil {
			t.Fatal(err)
		}

		check := &ConfigFileCheck{ConfigPath: cfgPath}
		result := check.Run(ctx)

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("none found warns and fixes", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HOME", t.TempDir())
		initPath := filepath.Join(t.TempDir(), ".pulse.yaml")

		check := &ConfigFileCheck{InitPath: initPath}
		result := check.Run(ctx)
		if result.Status != StatusWarn || !result.Fixable {
			t.Fatalf("expected fixable warning, got %+v", result)
		}

		if err := check.Fix(); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(initPath); err != nil {
			t.Errorf("Fix should write %s: %v", initPath, err)
		}
	})

	t.Run("name and category", func(t *testing.T) {
		check := &ConfigFileCheck{}
		if check.Name() != "config_file" {
			t.Errorf("expected name 'config_file', got %s", check.Name())
		}
		if check.Category() != "CONFIG" {
			t.Errorf("expected category 'CONFIG', got %s", check.Category())
		}
	})
}

func TestConfigSchemaCheck(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		want    CheckStatus
	}{
		{"valid", "server:\n  addr: \":4100\"\n", StatusPass},
		{"bad yaml", "feed: [\n", StatusFail},
		{"bad duration", "server:\n  interval: often\n", StatusFail},
		{"invalid url", "feed:\n  url: ftp://metrics\n", StatusFail},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, filepath.Base(tc.name)+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}

			result := (&ConfigSchemaCheck{ConfigPath: path}).Run(ctx)

			if result.Status != tc.want {
				t.Errorf("case %d: expected %v, got %v: %s", i, tc.want, result.Status, result.Message)
			}
		})
	}
}

func TestNewConfigChecks(t *testing.T) {
	checks := NewConfigChecks("", "")
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	for _, c := range checks {
		if c.Category() != CategoryConfig {
			t.Errorf("%s: expected CONFIG, got %s", c.Name(), c.Category())
		}
	}
}
