// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncpoints

import (
	"log/slog"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/beatfile"
	"github.com/jamiemacari/guitarprotool/lib/config"
	"github.com/jamiemacari/guitarprotool/lib/drift"
	"github.com/jamiemacari/guitarprotool/lib/syncplan"
	"github.com/jamiemacari/guitarprotool/lib/tempo"
)

// defaultBeatsPerBar applies when neither the flag nor the beat file
// gives a time signature.
const defaultBeatsPerBar = 4

// plannerConfig translates the sync and tempo_correction sections of
// the configuration, then the command-line overrides, into a
// [syncplan.Config].
func plannerConfig(cfg *config.Config, params *syncParams, logger *slog.Logger) (syncplan.Config, error) {
	planner := syncplan.Default()
	planner.SampleRate = cfg.Sync.SampleRate
	planner.DriftThresholdPercent = cfg.Sync.DriftThresholdPercent
	planner.MinGap = cfg.Sync.MinGap
	planner.MaxGap = cfg.Sync.MaxGap
	planner.Analysis.WindowBeats = cfg.Sync.WindowBeats
	planner.CorrectTempo = cfg.TempoCorrection.Enabled
	planner.Correction = tempo.Bands{
		DoubleTimeTolerance: cfg.TempoCorrection.DoubleTimeTolerance,
		HalfTimeTolerance:   cfg.TempoCorrection.HalfTimeTolerance,
	}
	planner.Logger = logger

	matching := cfg.Sync.Matching
	if params.Matching != "" {
		matching = params.Matching
	}
	if err := planner.Analysis.Matching.UnmarshalText([]byte(matching)); err != nil {
		return syncplan.Config{}, cli.Validation("matching: %w", err)
	}
	if params.SampleRate != 0 {
		planner.SampleRate = params.SampleRate
	}
	if params.DriftThreshold != 0 {
		planner.DriftThresholdPercent = params.DriftThreshold
	}
	if params.MaxGap != 0 {
		planner.MaxGap = params.MaxGap
	}
	if params.NoTempoCorrection {
		planner.CorrectTempo = false
	}

	if err := planner.Validate(); err != nil {
		return syncplan.Config{}, cli.Validation("%w", err)
	}
	return planner, nil
}

// resolveTimeline combines the flags with what the beat file declares.
// Flags win. A bar count of zero is left for the planner, which counts
// the bars covered by the corrected beats.
func resolveTimeline(params *syncParams, file *beatfile.File) (drift.Timeline, error) {
	timeline := drift.Timeline{
		TempoBPM:    firstNonZero(params.Tempo, file.TempoBPM),
		BeatsPerBar: firstNonZero(params.BeatsPerBar, file.BeatsPerBar, defaultBeatsPerBar),
		BarCount:    firstNonZero(params.Bars, file.BarCount),
	}
	if timeline.TempoBPM == 0 {
		return drift.Timeline{}, cli.Validation("--tempo is required: %s does not declare a tempo", params.Beats)
	}
	checked := timeline
	if checked.BarCount == 0 {
		checked.BarCount = 1
	}
	if err := checked.Validate(); err != nil {
		return drift.Timeline{}, cli.Validation("%w", err)
	}
	return timeline, nil
}

func firstNonZero[T int | float64](values ...T) T {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}
