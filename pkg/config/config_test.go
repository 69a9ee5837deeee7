package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfigIsValid tests that defaults pass validation.
func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(DefaultConfig()) failed: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Validation.DefaultDelay != 100*time.Millisecond {
		t.Errorf("Validation.DefaultDelay = %v, want 100ms", cfg.Validation.DefaultDelay)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Backend != "sqlite" {
		t.Errorf("Journal defaults = %+v", cfg.Journal)
	}
	if cfg.Journal.Retention.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.Journal.Retention.RetentionDays)
	}
	if cfg.Metrics.Namespace != "mercator" || cfg.Metrics.Subsystem != "callisto" {
		t.Errorf("Metrics defaults = %+v", cfg.Metrics)
	}
}

// TestLoadConfig tests loading a YAML file with partial overrides.
func TestLoadConfig(t *testing.T) {
	content := `
logging:
  level: debug
  format: json
validation:
  default_delay: 250ms
journal:
  enabled: false
  backend: memory
metrics:
  subsystem: forms
`
	path := writeConfig(t, content)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Validation.DefaultDelay != 250*time.Millisecond {
		t.Errorf("DefaultDelay = %v, want 250ms", cfg.Validation.DefaultDelay)
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want explicit false to survive")
	}
	if cfg.Journal.Backend != "memory" {
		t.Errorf("Journal.Backend = %q, want memory", cfg.Journal.Backend)
	}

	// Untouched sections keep their defaults.
	if cfg.Journal.SQLite.Path != DefaultSQLitePath {
		t.Errorf("SQLite.Path = %q, want default", cfg.Journal.SQLite.Path)
	}
	if cfg.Metrics.Namespace != "mercator" || cfg.Metrics.Subsystem != "forms" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

// TestLoadConfigMissingFile tests the error for a nonexistent path.
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() with missing file succeeded, want error")
	}
}

// TestLoadConfigInvalidYAML tests the error for malformed YAML.
func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "logging: [not a mapping")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() with malformed YAML succeeded, want error")
	}
}

// TestValidateCollectsAllErrors tests multi-error reporting.
func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	cfg.Journal.Backend = "postgres"
	cfg.Journal.Retention.PruneSchedule = "whenever"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() succeeded, want error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("collected %d errors, want 3: %v", len(verr.Errors), verr)
	}

	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	joined := strings.Join(fields, ",")
	for _, want := range []string{"logging.level", "journal.backend", "journal.retention.prune_schedule"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing field error for %s in %v", want, fields)
		}
	}
}

// TestValidateNegativeDurations tests negative duration rejection.
func TestValidateNegativeDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validation.DefaultDelay = -time.Second

	if err := Validate(cfg); err == nil {
		t.Error("Validate() with negative delay succeeded, want error")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "callisto.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}
