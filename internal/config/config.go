// Package config provides configuration types and defaults for formtree.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/formtree/internal/log"
	"github.com/zjrosen/formtree/internal/tracing"
)

// Config holds all configuration options for formtree.
type Config struct {
	// Layout is the default layout file for `formtree inspect`.
	Layout string `mapstructure:"layout"`

	// Debug enables file logging.
	Debug bool `mapstructure:"debug"`

	// LogPath is the debug log file. Default: debug.log
	LogPath string `mapstructure:"log_path"`

	// WatchDebounce coalesces bursts of layout file writes in --watch mode.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`

	Tracing tracing.Config `mapstructure:"tracing"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/formtree/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "formtree", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LogPath:       "debug.log",
		WatchDebounce: 200 * time.Millisecond,
		Tracing:       tracing.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
// Empty values are valid and fall back to defaults.
func Validate(c Config) error {
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}

	if !t.Enabled {
		return nil
	}
	if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// ResolveTracing fills derived tracing defaults, such as the file exporter
// path when none was configured.
func (c Config) ResolveTracing() tracing.Config {
	t := c.Tracing
	if t.ServiceName == "" {
		t.ServiceName = tracing.DefaultConfig().ServiceName
	}
	if t.Exporter == "file" && t.FilePath == "" {
		t.FilePath = DefaultTracesFilePath()
	}
	return t
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# formtree configuration

# Layout file loaded by 'formtree inspect' when no argument is given
# layout: forms.yaml

# Write debug logs (same as --debug or FORMTREE_DEBUG=1)
debug: false
log_path: debug.log

# Debounce for 'formtree inspect --watch'
watch_debounce: 200ms

# Registry tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/formtree/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
