// Package config handles configuration loading and validation for stride.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/stride/internal/core/identity"
	"github.com/hay-kot/stride/internal/core/validate"
)

// Storage backends.
const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	IDs        IDConfig         `yaml:"ids"`
	Validation ValidationConfig `yaml:"validation"`
	DataDir    string           `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects where activities are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// IDConfig configures the id allocator.
type IDConfig struct {
	Strategy   identity.Strategy `yaml:"strategy"`
	Range      int               `yaml:"range"`
	MaxRetries int               `yaml:"max_retries"`
}

// ValidationConfig selects the input acceptance rule.
type ValidationConfig struct {
	Mode validate.Mode `yaml:"mode"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Backend: BackendJSONFile},
		IDs: IDConfig{
			Strategy:   identity.StrategySequence,
			Range:      identity.DefaultRange,
			MaxRetries: identity.DefaultMaxRetries,
		},
		Validation: ValidationConfig{Mode: validate.ModeLiteral},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.IDs.Strategy == "" {
		c.IDs.Strategy = defaults.IDs.Strategy
	}
	if c.IDs.Range == 0 {
		c.IDs.Range = defaults.IDs.Range
	}
	if c.IDs.MaxRetries == 0 {
		c.IDs.MaxRetries = defaults.IDs.MaxRetries
	}
	if c.Validation.Mode == "" {
		c.Validation.Mode = defaults.Validation.Mode
	}
}

// Validate checks that the configuration is valid. Problems are reported
// together as criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder
	add := func(field, format string, args ...any) {
		errs = errs.Append(field, fmt.Errorf(format, args...))
	}

	if c.DataDir == "" {
		add("data_dir", "data directory cannot be empty")
	}

	switch c.Storage.Backend {
	case BackendJSONFile, BackendSQLite:
	default:
		add("storage.backend", "unknown backend %q (want %s or %s)", c.Storage.Backend, BackendJSONFile, BackendSQLite)
	}

	switch c.IDs.Strategy {
	case identity.StrategySequence, identity.StrategyRandom:
	default:
		add("ids.strategy", "unknown strategy %q (want %s or %s)", c.IDs.Strategy, identity.StrategySequence, identity.StrategyRandom)
	}

	if c.IDs.Range < 1 {
		add("ids.range", "must be at least 1")
	}
	if c.IDs.MaxRetries < 1 {
		add("ids.max_retries", "must be at least 1")
	}

	switch c.Validation.Mode {
	case validate.ModeLiteral, validate.ModeStrict:
	default:
		add("validation.mode", "unknown mode %q (want %s or %s)", c.Validation.Mode, validate.ModeLiteral, validate.ModeStrict)
	}

	return errs.ToError()
}

// Warnings returns non-fatal observations about the configuration.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.IDs.Strategy == identity.StrategyRandom {
		warnings = append(warnings, fmt.Sprintf(
			"ids.strategy random can only issue %d ids; sequence never runs out", c.IDs.Range))
	}
	if c.Validation.Mode == validate.ModeLiteral {
		warnings = append(warnings, "validation.mode literal rejects rides with zero elevation gain")
	}

	return warnings
}

// AllocatorOptions returns the identity options described by the config.
func (c *Config) AllocatorOptions() identity.Options {
	return identity.Options{
		Strategy:   c.IDs.Strategy,
		Range:      c.IDs.Range,
		MaxRetries: c.IDs.MaxRetries,
	}
}

// StorePath returns the path of the blob store for the configured backend.
func (c *Config) StorePath() string {
	if c.Storage.Backend == BackendSQLite {
		return filepath.Join(c.DataDir, "stride.db")
	}
	return filepath.Join(c.DataDir, "stride.json")
}
