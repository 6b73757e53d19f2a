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

// Trigger records why a sync point was placed.
type Trigger int

const (
	// TriggerOrigin is bar 0, which always has a point.
	TriggerOrigin Trigger = iota
	// TriggerDrift is a point placed because drift since the previous
	// point exceeded the threshold.
	TriggerDrift
	// TriggerMaxGap is a point placed because MaxGap bars had passed.
	TriggerMaxGap
)

var triggerNames = map[Trigger]string{
	TriggerOrigin: "origin",
	TriggerDrift:  "drift",
	TriggerMaxGap: "max-gap",
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Trigger(%d)", int(t))
}

func (t Trigger) MarshalText() ([]byte, error) {
	name, ok := triggerNames[t]
	if !ok {
		return nil, fmt.Errorf("syncplan: unknown trigger %d", int(t))
	}
	return []byte(name), nil
}

func (t *Trigger) UnmarshalText(text []byte) error {
	for value, name := range triggerNames {
		if name == string(text) {
			*t = value
			return nil
		}
	}
	return fmt.Errorf("syncplan: unknown trigger %q", text)
}

// SyncPoint ties a bar of the score to a position in the audio.
type SyncPoint struct {
	Bar int `json:"bar"`

	// FrameOffset is the bar's actual position in frames after the
	// plan's origin. Bar 0 is always at 0.
	FrameOffset int64 `json:"frame_offset"`

	// LocalTempoBPM is the performed tempo around the bar; at bar 0 it
	// is the nominal tempo.
	LocalTempoBPM   float64 `json:"local_tempo_bpm"`
	NominalTempoBPM float64 `json:"nominal_tempo_bpm"`

	Trigger Trigger `json:"trigger"`

	// DriftPercent is the drift since the previous point that was
	// measured when this point was placed. Zero at bar 0.
	DriftPercent float64 `json:"drift_percent,omitempty"`
}

// Plan is the output of [Planner.Plan].
type Plan struct {
	// Points is ordered by bar, starts at bar 0 and has at most one
	// point per bar.
	Points []SyncPoint

	Origin TimeOrigin

	// InitialTimeOffset is Origin.InitialTimeOffset(), exposed for
	// consumers that only need the whole-track shift.
	InitialTimeOffset int64

	Report *drift.Report

	// Correction is the octave correction applied to the beats before
	// analysis.
	Correction tempo.Correction
}

// Bars returns the bars that received a point.
func (p *Plan) Bars() []int {
	bars := make([]int, len(p.Points))
	for i, point := range p.Points {
		bars[i] = point.Bar
	}
	return bars
}

// Planner computes sync plans. It holds only configuration and is safe
// for concurrent use.
type Planner struct {
	config Config
	logger *slog.Logger
}

// NewPlanner validates config and returns a Planner.
func NewPlanner(config Config) (*Planner, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("syncplan: invalid config: %w", err)
	}
	config = config.withDefaults()
	return &Planner{config: config, logger: config.Logger}, nil
}

// Config returns the planner's configuration with defaults applied.
func (p *Planner) Config() Config { return p.config }

// Plan runs beat validation, tempo correction and drift analysis on
// beats against timeline, then places sync points.
//
// A zero timeline.BarCount means the bars fully covered by the beats
// after sanitizing and octave correction, at least one.
//
// It returns [*drift.InvalidTimelineError] for an unusable timeline and
// an error wrapping [tempo.ErrInsufficientBeats] when fewer than two
// valid beats remain.
func (p *Planner) Plan(timeline drift.Timeline, beats []float64) (*Plan, error) {
	deriveBars := timeline.BarCount == 0
	checked := timeline
	if deriveBars {
		checked.BarCount = 1
	}
	if err := checked.Validate(); err != nil {
		var invalid *drift.InvalidTimelineError
		if errors.As(err, &invalid) {
			invalid.Timeline = timeline
		}
		return nil, err
	}
	valid, dropped := tempo.Sanitize(beats)
	if len(valid) < 2 {
		return nil, fmt.Errorf("syncplan: %w: %d valid of %d", tempo.ErrInsufficientBeats, len(valid), len(beats))
	}
	if dropped > 0 {
		p.logger.Warn("dropped invalid beat timestamps", "dropped", dropped, "kept", len(valid))
	}

	correction := tempo.Result{Beats: valid, Correction: tempo.CorrectionNone}
	if p.config.CorrectTempo {
		var err error
		correction, err = tempo.Correct(valid, timeline.TempoBPM, p.config.Correction)
		if err != nil {
			return nil, fmt.Errorf("syncplan: %w", err)
		}
		if correction.Applied() {
			p.logger.Info("corrected beat tracker octave error",
				"correction", correction.Correction,
				"detected_bpm", correction.DetectedTempo,
				"corrected_bpm", correction.CorrectedTempo,
				"nominal_bpm", timeline.TempoBPM,
			)
		}
	}

	if deriveBars {
		timeline.BarCount = max(1, len(correction.Beats)/timeline.BeatsPerBar)
		p.logger.Info("bar count derived from the beats",
			"bars", timeline.BarCount,
			"beats", len(correction.Beats),
			"beats_per_bar", timeline.BeatsPerBar,
		)
	}

	analyzer, err := drift.NewAnalyzer(timeline, correction.Beats, p.config.Analysis)
	if err != nil {
		return nil, fmt.Errorf("syncplan: %w", err)
	}
	report := analyzer.Analyze()
	if correction.Applied() {
		report.Correction = correction.Correction
		report.DetectedTempoBPM = correction.DetectedTempo
		report.CorrectedTempoBPM = correction.CorrectedTempo
	}

	origin := NewTimeOrigin(analyzer.Origin(), p.config.SampleRate)
	plan := &Plan{
		Points:            p.place(analyzer, report, origin),
		Origin:            origin,
		InitialTimeOffset: origin.InitialTimeOffset(),
		Report:            report,
		Correction:        correction.Correction,
	}
	report.SyncBars = plan.Bars()

	p.logger.Debug("sync plan complete",
		"bars", timeline.BarCount,
		"points", len(plan.Points),
		"initial_time_offset", plan.InitialTimeOffset,
	)
	return plan, nil
}

// place runs the greedy scan over the analysed bars.
func (p *Planner) place(analyzer *drift.Analyzer, report *drift.Report, origin TimeOrigin) []SyncPoint {
	timeline := analyzer.Timeline()
	points := []SyncPoint{{
		Bar:             0,
		FrameOffset:     0,
		LocalTempoBPM:   timeline.TempoBPM,
		NominalTempoBPM: timeline.TempoBPM,
		Trigger:         TriggerOrigin,
	}}
	lastTime := 0.0

	for bar := 1; bar < timeline.BarCount; bar++ {
		last := points[len(points)-1]
		since := bar - last.Bar
		if since < p.config.MinGap {
			continue
		}

		record := report.Records[bar]
		drifted := driftSince(timeline, last, lastTime, bar, record.ActualTime)
		trigger := TriggerOrigin
		switch {
		case since >= p.config.MaxGap:
			trigger = TriggerMaxGap
		case drifted > p.config.DriftThresholdPercent:
			trigger = TriggerDrift
		default:
			continue
		}

		if record.Extrapolated {
			p.logger.Debug("sync point placed past the last detected beat", "bar", bar)
		}
		points = append(points, SyncPoint{
			Bar:             bar,
			FrameOffset:     origin.FrameOffset(record.ActualTime),
			LocalTempoBPM:   record.LocalTempoBPM,
			NominalTempoBPM: timeline.TempoBPM,
			Trigger:         trigger,
			DriftPercent:    drifted,
		})
		lastTime = record.ActualTime
	}
	return points
}

// driftSince compares bar's actual time with the time predicted by
// holding the previous point's local tempo, as a percentage of the
// predicted span.
func driftSince(timeline drift.Timeline, last SyncPoint, lastTime float64, bar int, actual float64) float64 {
	beats := float64((bar - last.Bar) * timeline.BeatsPerBar)
	span := beats * 60 / last.LocalTempoBPM
	if !(span > 0) || math.IsInf(span, 0) {
		return 0
	}
	predicted := lastTime + span
	return math.Abs(actual-predicted) / span * 100
}
