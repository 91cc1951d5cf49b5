// Package config loads accord's YAML configuration.
//
// Unknown keys are rejected, unset keys keep their defaults, and relative
// paths are resolved against the config file's directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/modifier"
	"github.com/roach88/accord/internal/store"
	"github.com/roach88/accord/internal/weight"
)

// MemoryDatabase is a database path that is never resolved against the
// config directory.
const MemoryDatabase = store.MemoryPath

// Config is the full configuration file.
type Config struct {
	// Database is the SQLite path. Empty disables persistence.
	Database string `yaml:"database"`

	// Policy is a CUE policy file. Empty uses the built-in policy and
	// identity table.
	Policy string `yaml:"policy"`

	Modifier    ModifierConfig  `yaml:"modifier"`
	Weighting   WeightingConfig `yaml:"weighting"`
	Ledger      LedgerConfig    `yaml:"ledger"`
	Concurrency int             `yaml:"concurrency"`
	Log         LogConfig       `yaml:"log"`
}

// ModifierConfig locates and converts the external modifier store.
type ModifierConfig struct {
	Store          string  `yaml:"store"`
	CohesionFactor float32 `yaml:"cohesion_factor"`
	Floor          uint64  `yaml:"floor"`
}

// WeightingConfig holds the weighting constants.
type WeightingConfig struct {
	ReservedIntent      string `yaml:"reserved_intent"`
	IntentBonus         uint64 `yaml:"intent_bonus"`
	AmplificationFactor uint64 `yaml:"amplification_factor"`
	Lanes               int    `yaml:"lanes"`
}

// LedgerConfig controls submission classification.
type LedgerConfig struct {
	MinPublishWeight uint64 `yaml:"min_publish_weight"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the built-in configuration.
func Default() *Config {
	wp := weight.DefaultParams()
	mp := modifier.DefaultParams()
	return &Config{
		Modifier: ModifierConfig{
			CohesionFactor: mp.CohesionFactor,
			Floor:          mp.Floor,
		},
		Weighting: WeightingConfig{
			ReservedIntent:      wp.ReservedIntent,
			IntentBonus:         wp.IntentBonus,
			AmplificationFactor: wp.AmplificationFactor,
			Lanes:               wp.Lanes,
		},
		Ledger:      LedgerConfig{MinPublishWeight: engine.DefaultMinPublishWeight},
		Concurrency: engine.DefaultConcurrency,
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path, applies it over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Empty input yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || p == MemoryDatabase || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Database = resolve(c.Database)
	c.Policy = resolve(c.Policy)
	c.Modifier.Store = resolve(c.Modifier.Store)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ModifierParams().Validate(); err != nil {
		return err
	}
	if err := c.WeightParams().Validate(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// WeightParams returns the weighting section as weight.Params.
func (c *Config) WeightParams() weight.Params {
	return weight.Params{
		ReservedIntent:      c.Weighting.ReservedIntent,
		IntentBonus:         c.Weighting.IntentBonus,
		AmplificationFactor: c.Weighting.AmplificationFactor,
		Lanes:               c.Weighting.Lanes,
	}
}

// ModifierParams returns the modifier section as modifier.Params.
func (c *Config) ModifierParams() modifier.Params {
	return modifier.Params{
		CohesionFactor: c.Modifier.CohesionFactor,
		Floor:          c.Modifier.Floor,
	}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
}

// NewLogger builds the process logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
