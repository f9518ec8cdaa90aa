// Package config loads cursing settings from YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Transport kinds.
const (
	TransportNone   = "none"
	TransportMemory = "memory"
	TransportNATS   = "nats"
)

// Collaborator kinds.
const (
	CollaboratorNone   = "none"
	CollaboratorMock   = "mock"
	CollaboratorSQLite = "sqlite"
)

const defaultNATSURL = "nats://127.0.0.1:4222"

// Config is the full application configuration.
type Config struct {
	UI           UIConfig           `yaml:"ui"`
	Log          LogConfig          `yaml:"log"`
	Transport    TransportConfig    `yaml:"transport"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Collaborator CollaboratorConfig `yaml:"collaborator"`
}

// UIConfig sizes the screen and drives redraws.
type UIConfig struct {
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	ThemeFile string        `yaml:"theme_file"`
	TickRate  time.Duration `yaml:"tick_rate"`
	// MessageBuffer is the capacity of the loop's message queue.
	MessageBuffer int `yaml:"message_buffer"`
}

// LogConfig controls the JSON log file. The terminal belongs to the UI, so
// logs never go to stdout.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`

	// Trace writes OpenTelemetry spans for bus dispatches and collaborator
	// calls into the log file.
	Trace bool `yaml:"trace"`
}

// TransportConfig selects how db.* events reach collaborators outside the
// process.
type TransportConfig struct {
	Kind   string `yaml:"kind"`
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// MetricsConfig exposes bus metrics over HTTP. An empty address disables
// the server.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// CollaboratorConfig selects the in-process database manager that answers
// db.* events.
type CollaboratorConfig struct {
	Kind     string       `yaml:"kind"`
	Fixtures string       `yaml:"fixtures"`
	SQLite   SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig tunes the SQLite manager. The server named on connect is a
// directory of database files.
type SQLiteConfig struct {
	RowLimit int           `yaml:"row_limit"`
	Timeout  time.Duration `yaml:"timeout"`
	ReadOnly bool          `yaml:"read_only"`
}

// DefaultConfig returns the built-in configuration: an 80x24 screen, the
// mock collaborator on the in-process bus, and metrics off.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := filepath.Join(".cursing", "cursing.log")
	if home != "" {
		logPath = filepath.Join(home, ".cursing", "cursing.log")
	}
	return &Config{
		UI: UIConfig{
			Width:         80,
			Height:        24,
			TickRate:      250 * time.Millisecond,
			MessageBuffer: 256,
		},
		Log: LogConfig{
			Path:  logPath,
			Level: "info",
		},
		Transport: TransportConfig{
			Kind:   TransportNone,
			URL:    defaultNATSURL,
			Prefix: "cursing",
		},
		Collaborator: CollaboratorConfig{
			Kind: CollaboratorMock,
			SQLite: SQLiteConfig{
				RowLimit: 500,
				Timeout:  5 * time.Second,
			},
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, then ~/.cursing/config.yaml, then ./.cursing/config.yaml, then
// CURSING_* environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".cursing", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectConfigPath := filepath.Join(".", ".cursing", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverridesForTest exposes env override logic for tests without file I/O.
func ApplyEnvOverridesForTest(cfg *Config) {
	applyEnvOverrides(cfg)
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CURSING_THEME"); v != "" {
		cfg.UI.ThemeFile = v
	}
	if v := strings.TrimSpace(os.Getenv("CURSING_TICK_RATE")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.UI.TickRate = d
		}
	}
	if v := os.Getenv("CURSING_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("CURSING_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if val, ok := envBool("CURSING_TRACE"); ok {
		cfg.Log.Trace = val
	}
	if v := os.Getenv("CURSING_TRANSPORT"); v != "" {
		cfg.Transport.Kind = v
	}
	if v := os.Getenv("CURSING_NATS_URL"); v != "" {
		cfg.Transport.URL = v
	}
	if v := os.Getenv("CURSING_SUBJECT_PREFIX"); v != "" {
		cfg.Transport.Prefix = v
	}
	if v := os.Getenv("CURSING_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("CURSING_COLLABORATOR"); v != "" {
		cfg.Collaborator.Kind = v
	}
	if val, ok := envBool("CURSING_SQLITE_READ_ONLY"); ok {
		cfg.Collaborator.SQLite.ReadOnly = val
	}
	if v := strings.TrimSpace(os.Getenv("CURSING_MESSAGE_BUFFER")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UI.MessageBuffer = n
		}
	}
}

func envBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func (c *Config) expandPaths() {
	c.UI.ThemeFile = expandHomeDir(c.UI.ThemeFile)
	c.Log.Path = expandHomeDir(c.Log.Path)
	c.Collaborator.Fixtures = expandHomeDir(c.Collaborator.Fixtures)
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.UI.Width <= 0 || c.UI.Height <= 0 {
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, c.UI.Width, c.UI.Height)
	}
	if c.UI.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate must be positive, got %s", ErrInvalid, c.UI.TickRate)
	}
	if c.UI.MessageBuffer < 0 {
		return fmt.Errorf("%w: message buffer must not be negative", ErrInvalid)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q (valid: debug, info, warn, error)", ErrInvalid, c.Log.Level)
	}

	switch c.Transport.Kind {
	case TransportNone, TransportMemory:
	case TransportNATS:
		if strings.TrimSpace(c.Transport.URL) == "" {
			return fmt.Errorf("%w: nats transport requires a url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: transport %q (valid: none, memory, nats)", ErrInvalid, c.Transport.Kind)
	}
	if c.Transport.Kind != TransportNone && strings.TrimSpace(c.Transport.Prefix) == "" {
		return fmt.Errorf("%w: transport requires a subject prefix", ErrInvalid)
	}

	switch c.Collaborator.Kind {
	case CollaboratorNone, CollaboratorMock:
	case CollaboratorSQLite:
		if c.Collaborator.SQLite.RowLimit <= 0 {
			return fmt.Errorf("%w: sqlite row limit must be positive", ErrInvalid)
		}
		if c.Collaborator.SQLite.Timeout <= 0 {
			return fmt.Errorf("%w: sqlite timeout must be positive", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: collaborator %q (valid: none, mock, sqlite)", ErrInvalid, c.Collaborator.Kind)
	}
	return nil
}
