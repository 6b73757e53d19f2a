// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file read by [Load].
const EnvironmentVariable = "GUITARPROTOOL_CONFIG"

// Config is the complete guitarprotool configuration.
type Config struct {
	Sync            SyncConfig            `yaml:"sync"`
	TempoCorrection TempoCorrectionConfig `yaml:"tempo_correction"`
	Container       ContainerConfig       `yaml:"container"`
	Cache           CacheConfig           `yaml:"cache"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// SyncConfig configures sync-point planning and drift analysis.
type SyncConfig struct {
	// SampleRate is the frame rate of every emitted frame offset.
	// Default: 44100
	SampleRate int `yaml:"sample_rate"`

	// DriftThresholdPercent is the drift since the last sync point that
	// places a new one.
	// Default: 0.5
	DriftThresholdPercent float64 `yaml:"drift_threshold_percent"`

	// MinGap and MaxGap bound the bars between sync points.
	// Default: 1 and 8
	MinGap int `yaml:"min_gap"`
	MaxGap int `yaml:"max_gap"`

	// WindowBeats is the number of beats whose median interval gives a
	// bar's local tempo.
	// Default: 8
	WindowBeats int `yaml:"window_beats"`

	// Matching locates each bar in the detected beats: "direct" takes
	// beat bar*beatsPerBar, "nearest" the beat closest to the expected
	// time.
	// Default: direct
	Matching string `yaml:"matching"`
}

// TempoCorrectionConfig configures octave-error correction.
type TempoCorrectionConfig struct {
	// Enabled turns correction on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// DoubleTimeTolerance and HalfTimeTolerance are the relative widths
	// of the bands around ratios 2 and 0.5.
	// Default: 0.30 and 0.075
	DoubleTimeTolerance float64 `yaml:"double_time_tolerance"`
	HalfTimeTolerance   float64 `yaml:"half_time_tolerance"`
}

// ContainerConfig configures container decoding.
type ContainerConfig struct {
	// ShortfallTolerance is the fraction of the declared size a BCFZ
	// stream may fall short by and still be accepted. 0 is strict.
	// Default: 0
	ShortfallTolerance float64 `yaml:"shortfall_tolerance"`

	// Repair runs the XML repair pass over unpacked XML entries.
	// Default: true
	Repair bool `yaml:"repair"`

	// DisabledRepairs names repair rules to skip.
	DisabledRepairs []string `yaml:"disabled_repairs"`
}

// CacheConfig configures the unpacked-container cache.
type CacheConfig struct {
	// Enabled makes unpack consult and fill the cache by default.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Directory holds cached entries.
	// Default: ${XDG_CACHE_HOME}/guitarprotool, with XDG_CACHE_HOME
	// falling back to ${HOME}/.cache.
	Directory string `yaml:"directory"`
}

// LoggingConfig configures the command logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error. --verbose forces debug.
	// Default: info
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text or json.
	// Default: auto
	Format string `yaml:"format"`
}

var (
	matchingValues  = []string{"direct", "nearest"}
	logFormatValues = []string{"auto", "text", "json"}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			SampleRate:            44100,
			DriftThresholdPercent: 0.5,
			MinGap:                1,
			MaxGap:                8,
			WindowBeats:           8,
			Matching:              "direct",
		},
		TempoCorrection: TempoCorrectionConfig{
			Enabled:             true,
			DoubleTimeTolerance: 0.30,
			HalfTimeTolerance:   0.075,
		},
		Container: ContainerConfig{
			Repair: true,
		},
		Cache: CacheConfig{
			Directory: "${XDG_CACHE_HOME}/guitarprotool",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by GUITARPROTOOL_CONFIG.
// It fails when the variable is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a guitarprotool.yaml file, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over [Default] values and
// expands variables in path fields. Unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over [Default] values and expands
// variables in path fields.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	home := os.Getenv("HOME")
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" && home != "" {
		cacheHome = home + "/.cache"
	}
	vars := map[string]string{
		"HOME":           home,
		"XDG_CACHE_HOME": cacheHome,
	}
	c.Cache.Directory = expandVars(c.Cache.Directory, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Values in
// vars take precedence over the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem.
func (c *Config) Validate() error {
	var errs []error

	if c.Sync.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sync.sample_rate %d must be positive", c.Sync.SampleRate))
	}
	if !(c.Sync.DriftThresholdPercent >= 0) || math.IsInf(c.Sync.DriftThresholdPercent, 0) {
		errs = append(errs, fmt.Errorf("sync.drift_threshold_percent %v must be a non-negative number", c.Sync.DriftThresholdPercent))
	}
	if c.Sync.MinGap < 1 {
		errs = append(errs, fmt.Errorf("sync.min_gap %d must be at least 1", c.Sync.MinGap))
	}
	if c.Sync.MaxGap < c.Sync.MinGap {
		errs = append(errs, fmt.Errorf("sync.max_gap %d is below sync.min_gap %d", c.Sync.MaxGap, c.Sync.MinGap))
	}
	if c.Sync.WindowBeats < 2 {
		errs = append(errs, fmt.Errorf("sync.window_beats %d must be at least 2", c.Sync.WindowBeats))
	}
	if !slices.Contains(matchingValues, c.Sync.Matching) {
		errs = append(errs, fmt.Errorf("sync.matching must be one of: %v", matchingValues))
	}

	if !(c.TempoCorrection.DoubleTimeTolerance >= 0 && c.TempoCorrection.DoubleTimeTolerance < 0.5) {
		errs = append(errs, fmt.Errorf("tempo_correction.double_time_tolerance %v must be in [0, 0.5)", c.TempoCorrection.DoubleTimeTolerance))
	}
	if !(c.TempoCorrection.HalfTimeTolerance >= 0 && c.TempoCorrection.HalfTimeTolerance < 1) {
		errs = append(errs, fmt.Errorf("tempo_correction.half_time_tolerance %v must be in [0, 1)", c.TempoCorrection.HalfTimeTolerance))
	}

	if !(c.Container.ShortfallTolerance >= 0 && c.Container.ShortfallTolerance < 1) {
		errs = append(errs, fmt.Errorf("container.shortfall_tolerance %v must be in [0, 1)", c.Container.ShortfallTolerance))
	}

	if c.Cache.Enabled && c.Cache.Directory == "" {
		errs = append(errs, fmt.Errorf("cache.directory is required when the cache is enabled"))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(logFormatValues, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormatValues))
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level %q must be debug, info, warn or error", l.Level)
	}
	return level, nil
}
