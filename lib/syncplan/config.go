// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncplan

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jamiemacari/guitarprotool/lib/drift"
	"github.com/jamiemacari/guitarprotool/lib/tempo"
)

// Config tunes a [Planner]. Start from [Default]: zero numeric fields
// are filled from it, but CorrectTempo has no "unset" state.
type Config struct {
	// SampleRate is the reference rate, in frames per second, of every
	// frame offset.
	SampleRate int `yaml:"sample_rate"`

	// DriftThresholdPercent is the drift since the last sync point,
	// in percent of the elapsed span, that triggers a new point.
	DriftThresholdPercent float64 `yaml:"drift_threshold_percent"`

	// MinGap and MaxGap bound the bars between consecutive points.
	MinGap int `yaml:"min_gap"`
	MaxGap int `yaml:"max_gap"`

	Analysis drift.Config `yaml:"analysis"`

	Correction   tempo.Bands `yaml:"tempo_correction"`
	CorrectTempo bool        `yaml:"correct_tempo"`

	Logger *slog.Logger `yaml:"-"`
}

// Default returns a 44.1 kHz reference rate, a 0.5% drift threshold,
// gaps of one to eight bars and octave correction with the default
// bands.
func Default() Config {
	return Config{
		SampleRate:            44100,
		DriftThresholdPercent: 0.5,
		MinGap:                1,
		MaxGap:                8,
		Analysis:              drift.DefaultConfig(),
		Correction:            tempo.DefaultBands(),
		CorrectTempo:          true,
	}
}

func (c Config) withDefaults() Config {
	defaults := Default()
	if c.SampleRate == 0 {
		c.SampleRate = defaults.SampleRate
	}
	if c.DriftThresholdPercent == 0 {
		c.DriftThresholdPercent = defaults.DriftThresholdPercent
	}
	if c.MinGap == 0 {
		c.MinGap = defaults.MinGap
	}
	if c.MaxGap == 0 {
		c.MaxGap = max(defaults.MaxGap, c.MinGap)
	}
	if c.Correction == (tempo.Bands{}) {
		c.Correction = defaults.Correction
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Analysis.Logger == nil {
		c.Analysis.Logger = c.Logger
	}
	return c
}

// Validate checks explicitly set fields and reports every problem.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d must be positive", c.SampleRate))
	}
	if c.DriftThresholdPercent < 0 || math.IsNaN(c.DriftThresholdPercent) || math.IsInf(c.DriftThresholdPercent, 0) {
		errs = append(errs, fmt.Errorf("drift_threshold_percent %v must be a non-negative number", c.DriftThresholdPercent))
	}
	if c.MinGap < 0 {
		errs = append(errs, fmt.Errorf("min_gap %d must be positive", c.MinGap))
	}
	if c.MaxGap < 0 {
		errs = append(errs, fmt.Errorf("max_gap %d must be positive", c.MaxGap))
	}
	if c.MinGap > 0 && c.MaxGap > 0 && c.MaxGap < c.MinGap {
		errs = append(errs, fmt.Errorf("max_gap %d is below min_gap %d", c.MaxGap, c.MinGap))
	}
	if err := c.Analysis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("analysis: %w", err))
	}
	if c.Correction != (tempo.Bands{}) {
		if err := c.Correction.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tempo_correction: %w", err))
		}
	}
	return errors.Join(errs...)
}
