package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chriserin/strparse/internal/logging"
	"github.com/chriserin/strparse/internal/markup"
)

// Default values for configuration fields.
const (
	DefaultDir       = ".strparse"
	DefaultPath      = ".strparse/config.yaml"
	DefaultDatabase  = ".strparse/runs.db"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config is the contents of .strparse/config.yaml.
type Config struct {
	// Strict makes unmatched or rejected markup a parse error.
	Strict bool `yaml:"strict"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`
	// MaxDepth limits element nesting; 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`
	// Database is the sqlite file parse runs are recorded in.
	Database string `yaml:"database"`
	// Tags replaces the default markup tag set.
	Tags []markup.Tag `yaml:"tags"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = append([]markup.Tag(nil), markup.DefaultTags...)
	}
}

// Validate checks the configuration, including that the tag set can build a
// grammar.
func Validate(cfg *Config) error {
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if f := logging.LogFormat(cfg.LogFormat); f != logging.FormatText && f != logging.FormatJSON {
		return fmt.Errorf("invalid log_format %q (must be text or json)", cfg.LogFormat)
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", cfg.MaxDepth)
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return fmt.Errorf("database must not be empty")
	}
	if _, err := markup.New(cfg.GrammarOptions(false)); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	return nil
}

// GrammarOptions converts the configuration into markup grammar options.
func (c *Config) GrammarOptions(render bool) markup.Options {
	return markup.Options{Tags: c.Tags, MaxDepth: c.MaxDepth, Render: render}
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log_level %q (must be debug, info, warn or error)", s)
}
