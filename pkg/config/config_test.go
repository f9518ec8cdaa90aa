package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/cursing/pkg/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	cfgDir := filepath.Join(dir, ".cursing")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	path := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.UI.Width != 80 || cfg.UI.Height != 24 {
		t.Fatalf("default screen = %dx%d, want 80x24", cfg.UI.Width, cfg.UI.Height)
	}
	if cfg.Transport.Kind != config.TransportNone {
		t.Fatalf("default transport = %q", cfg.Transport.Kind)
	}
	if cfg.Collaborator.Kind != config.CollaboratorMock {
		t.Fatalf("default collaborator = %q, want mock", cfg.Collaborator.Kind)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadHierarchy(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, home, `
ui:
  theme_file: ~/themes/dark.yaml
  tick_rate: 100ms
log:
  level: debug
`)
	writeConfig(t, project, `
ui:
  tick_rate: 500ms
transport:
  kind: memory
`)
	chdir(t, project)
	t.Setenv("CURSING_METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load returned error: %v", err)
	}

	if cfg.UI.TickRate != 500*time.Millisecond {
		t.Fatalf("expected project tick rate, got %s", cfg.UI.TickRate)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected user log level, got %s", cfg.Log.Level)
	}
	if want := filepath.Join(home, "themes", "dark.yaml"); cfg.UI.ThemeFile != want {
		t.Fatalf("theme file = %s, want %s", cfg.UI.ThemeFile, want)
	}
	if cfg.Transport.Kind != config.TransportMemory {
		t.Fatalf("transport = %s", cfg.Transport.Kind)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Fatalf("expected env metrics address, got %q", cfg.Metrics.Addr)
	}
	if cfg.UI.Width != 80 {
		t.Fatalf("unset keys should keep defaults, width = %d", cfg.UI.Width)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
transport:
  kind: nats
  url: nats://db-host:4222
collaborator:
  kind: sqlite
  sqlite:
    row_limit: 50
    read_only: true
`)
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Transport.URL != "nats://db-host:4222" || cfg.Collaborator.Kind != config.CollaboratorSQLite {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	sqlite := cfg.Collaborator.SQLite
	if sqlite.RowLimit != 50 || !sqlite.ReadOnly || sqlite.Timeout != 5*time.Second {
		t.Fatalf("sqlite settings = %+v, want row limit 50, read-only, default timeout", sqlite)
	}

	if _, err := config.LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestInvalidTransportFailsValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("CURSING_TRANSPORT", "carrier-pigeon")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected config.Load to fail for an unknown transport")
	}
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("error %v does not wrap ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero width", func(c *config.Config) { c.UI.Width = 0 }},
		{"zero tick rate", func(c *config.Config) { c.UI.TickRate = 0 }},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"nats without url", func(c *config.Config) {
			c.Transport.Kind = config.TransportNATS
			c.Transport.URL = ""
		}},
		{"memory without prefix", func(c *config.Config) {
			c.Transport.Kind = config.TransportMemory
			c.Transport.Prefix = " "
		}},
		{"unknown collaborator", func(c *config.Config) { c.Collaborator.Kind = "oracle" }},
		{"sqlite without row limit", func(c *config.Config) {
			c.Collaborator.Kind = config.CollaboratorSQLite
			c.Collaborator.SQLite.RowLimit = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestEnvOverrideCollaborator(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Setenv("CURSING_COLLABORATOR", config.CollaboratorSQLite)
	t.Setenv("CURSING_SQLITE_READ_ONLY", "yes")
	config.ApplyEnvOverridesForTest(cfg)
	if cfg.Collaborator.Kind != config.CollaboratorSQLite {
		t.Fatalf("collaborator = %q", cfg.Collaborator.Kind)
	}
	if !cfg.Collaborator.SQLite.ReadOnly {
		t.Fatal("expected CURSING_SQLITE_READ_ONLY=yes to enable read-only mode")
	}

	t.Setenv("CURSING_TRACE", "true")
	config.ApplyEnvOverridesForTest(cfg)
	if !cfg.Log.Trace {
		t.Fatal("expected CURSING_TRACE=true to enable tracing")
	}

	t.Setenv("CURSING_SQLITE_READ_ONLY", "maybe")
	config.ApplyEnvOverridesForTest(cfg)
	if !cfg.Collaborator.SQLite.ReadOnly {
		t.Fatal("unparseable CURSING_SQLITE_READ_ONLY should be ignored")
	}

	t.Setenv("CURSING_TICK_RATE", "1s")
	config.ApplyEnvOverridesForTest(cfg)
	if cfg.UI.TickRate != time.Second {
		t.Fatalf("tick rate = %s", cfg.UI.TickRate)
	}
}
