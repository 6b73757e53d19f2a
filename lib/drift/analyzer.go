// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package drift

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jamiemacari/guitarprotool/lib/tempo"
)

// Matching selects how a bar is located in the detected beats.
type Matching int

const (
	// MatchDirect takes the beat at index bar*beatsPerBar.
	MatchDirect Matching = iota
	// MatchNearest takes the detected beat closest to the bar's
	// expected time, searching two bars either side of the direct
	// index. It tolerates spurious or missed beats at the cost of
	// snapping to the nominal grid when drift exceeds half a beat.
	MatchNearest
)

var matchingNames = map[Matching]string{
	MatchDirect:  "direct",
	MatchNearest: "nearest",
}

func (m Matching) String() string {
	if name, ok := matchingNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Matching(%d)", int(m))
}

func (m Matching) MarshalText() ([]byte, error) {
	name, ok := matchingNames[m]
	if !ok {
		return nil, fmt.Errorf("drift: unknown matching %d", int(m))
	}
	return []byte(name), nil
}

func (m *Matching) UnmarshalText(text []byte) error {
	for value, name := range matchingNames {
		if name == string(text) {
			*m = value
			return nil
		}
	}
	return fmt.Errorf("drift: unknown matching %q (want direct or nearest)", text)
}

// Config tunes an [Analyzer]. Zero fields take the values from
// [DefaultConfig].
type Config struct {
	// WindowBeats is the number of beats in the window whose median
	// interval gives a bar's local tempo.
	WindowBeats int `yaml:"window_beats"`

	Matching Matching `yaml:"matching"`

	// MaxInterval caps Report.RecommendedSyncInterval.
	MaxInterval int `yaml:"max_interval"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns an eight-beat tempo window, direct matching and
// a recommended interval of at most eight bars.
func DefaultConfig() Config {
	return Config{
		WindowBeats: 8,
		Matching:    MatchDirect,
		MaxInterval: 8,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.WindowBeats == 0 {
		c.WindowBeats = defaults.WindowBeats
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = defaults.MaxInterval
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Validate checks explicitly set fields.
func (c Config) Validate() error {
	var errs []error
	if c.WindowBeats < 0 || c.WindowBeats == 1 {
		errs = append(errs, fmt.Errorf("window_beats %d must be at least 2", c.WindowBeats))
	}
	if c.MaxInterval < 0 {
		errs = append(errs, fmt.Errorf("max_interval %d must be positive", c.MaxInterval))
	}
	if _, ok := matchingNames[c.Matching]; !ok {
		errs = append(errs, fmt.Errorf("unknown matching %d", int(c.Matching)))
	}
	return errors.Join(errs...)
}

// BarRecord is the drift measurement for one bar.
type BarRecord struct {
	Bar int `json:"bar"`

	// ExpectedTime and ActualTime are seconds after the origin beat.
	ExpectedTime float64 `json:"expected_time"`
	ActualTime   float64 `json:"actual_time"`

	LocalTempoBPM float64  `json:"local_tempo_bpm"`
	DriftPercent  float64  `json:"drift_percent"`
	Severity      Severity `json:"severity"`

	// Extrapolated is set when the bar lies beyond the detected beats
	// and ActualTime was projected from the tail tempo.
	Extrapolated bool `json:"extrapolated,omitempty"`
}

// DriftSeconds is ActualTime - ExpectedTime: positive when the
// performance is behind the score.
func (r BarRecord) DriftSeconds() float64 {
	return r.ActualTime - r.ExpectedTime
}

// Analyzer computes per-bar drift for one timeline and beat sequence.
// It is immutable after construction.
type Analyzer struct {
	timeline Timeline
	beats    []float64
	origin   float64
	config   Config
	logger   *slog.Logger

	// tailTempo is the local tempo of the final window of beats, used
	// to extrapolate past the last detected beat.
	tailTempo float64
}

// NewAnalyzer validates the timeline, drops invalid beats (see
// [tempo.Sanitize]) and prepares the analysis. It returns
// [*InvalidTimelineError] or an error wrapping
// [tempo.ErrInsufficientBeats] when fewer than two valid beats remain.
func NewAnalyzer(timeline Timeline, beats []float64, config Config) (*Analyzer, error) {
	if err := timeline.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("drift: invalid config: %w", err)
	}
	config = config.withDefaults()

	valid, dropped := tempo.Sanitize(beats)
	if len(valid) < 2 {
		return nil, fmt.Errorf("drift: %w: %d valid of %d", tempo.ErrInsufficientBeats, len(valid), len(beats))
	}
	if dropped > 0 {
		config.Logger.Warn("dropped invalid beat timestamps",
			"dropped", dropped,
			"kept", len(valid),
		)
	}

	analyzer := &Analyzer{
		timeline: timeline,
		beats:    valid,
		origin:   valid[0],
		config:   config,
		logger:   config.Logger,
	}
	intervals := tempo.Intervals(valid)
	tail := intervals[max(0, len(intervals)-config.WindowBeats):]
	analyzer.tailTempo = 60 / tempo.Median(tail)
	return analyzer, nil
}

// Timeline returns the analysed timeline.
func (a *Analyzer) Timeline() Timeline { return a.timeline }

// Origin is the absolute time, in seconds, of the first valid beat.
func (a *Analyzer) Origin() float64 { return a.origin }

// BeatCount is the number of valid beats.
func (a *Analyzer) BeatCount() int { return len(a.beats) }

// TailTempo is the tempo used to extrapolate past the last beat.
func (a *Analyzer) TailTempo() float64 { return a.tailTempo }

// ExpectedTime is the nominal offset of bar from the origin.
func (a *Analyzer) ExpectedTime(bar int) float64 {
	return a.timeline.ExpectedTime(bar)
}

// ActualTime is the offset of bar's first beat from the origin in the
// detected beats. extrapolated is true when the bar lies past the last
// detected beat.
func (a *Analyzer) ActualTime(bar int) (seconds float64, extrapolated bool) {
	index := bar * a.timeline.BeatsPerBar
	if a.config.Matching == MatchNearest {
		if nearest, ok := a.nearestBeat(bar); ok {
			return a.beats[nearest] - a.origin, false
		}
		return a.extrapolate(index), true
	}
	if index < len(a.beats) {
		return a.beats[index] - a.origin, false
	}
	return a.extrapolate(index), true
}

// extrapolate projects beat index past the last detected beat at the
// tail tempo.
func (a *Analyzer) extrapolate(index int) float64 {
	last := len(a.beats) - 1
	return a.beats[last] - a.origin + float64(index-last)*60/a.tailTempo
}

func (a *Analyzer) nearestBeat(bar int) (int, bool) {
	expected := a.origin + a.timeline.ExpectedTime(bar)
	barDuration := a.timeline.BarDuration()
	if expected > a.beats[len(a.beats)-1]+barDuration {
		return 0, false
	}
	estimate := bar * a.timeline.BeatsPerBar
	span := 2 * a.timeline.BeatsPerBar
	start := max(0, estimate-span)
	end := min(len(a.beats), estimate+span)
	if start >= end {
		return 0, false
	}

	nearest, distance := start, math.Inf(1)
	for i := start; i < end; i++ {
		if gap := math.Abs(a.beats[i] - expected); gap < distance {
			nearest, distance = i, gap
		}
	}
	if distance > barDuration/2 {
		a.logger.Debug("nearest beat is more than half a bar from the expected time",
			"bar", bar,
			"distance_seconds", distance,
		)
	}
	return nearest, true
}

// LocalTempo is 60 divided by the median interval of the window of
// beats centred on bar's first beat. Bars past the detected beats get
// the tail tempo.
func (a *Analyzer) LocalTempo(bar int) float64 {
	index := bar * a.timeline.BeatsPerBar
	if index >= len(a.beats) {
		return a.tailTempo
	}
	half := a.config.WindowBeats / 2
	start := max(0, index-half)
	end := min(len(a.beats), index+half+1)
	intervals := tempo.Intervals(a.beats[start:end])
	if len(intervals) == 0 {
		return a.tailTempo
	}
	return 60 / tempo.Median(intervals)
}

// DriftPercent is |actual - expected| / expected * 100, and 0 at bar 0.
func (a *Analyzer) DriftPercent(bar int) float64 {
	actual, _ := a.ActualTime(bar)
	return driftPercent(actual, a.ExpectedTime(bar))
}

func driftPercent(actual, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	return math.Abs(actual-expected) / expected * 100
}

// Record measures one bar.
func (a *Analyzer) Record(bar int) BarRecord {
	actual, extrapolated := a.ActualTime(bar)
	expected := a.ExpectedTime(bar)
	percent := driftPercent(actual, expected)
	return BarRecord{
		Bar:           bar,
		ExpectedTime:  expected,
		ActualTime:    actual,
		LocalTempoBPM: a.LocalTempo(bar),
		DriftPercent:  percent,
		Severity:      Classify(percent),
		Extrapolated:  extrapolated,
	}
}

// Analyze measures bars 0 through BarCount-1 and aggregates them.
func (a *Analyzer) Analyze() *Report {
	report := &Report{
		Timeline:  a.timeline,
		Origin:    a.origin,
		BeatCount: len(a.beats),
		Records:   make([]BarRecord, a.timeline.BarCount),
	}
	// Callers that corrected the beats overwrite these with the
	// pre-correction figure and the correction kind.
	report.DetectedTempoBPM = 60 / tempo.Median(tempo.Intervals(a.beats))
	report.CorrectedTempoBPM = report.DetectedTempoBPM

	var total float64
	stable := 0
	for bar := range a.timeline.BarCount {
		record := a.Record(bar)
		report.Records[bar] = record
		total += record.DriftPercent
		if record.DriftPercent > report.MaxDriftPercent {
			report.MaxDriftPercent = record.DriftPercent
			report.MaxDriftBar = bar
		}
		if !record.Severity.AtLeast(SeverityModerate) {
			stable++
		} else {
			report.SignificantBars = append(report.SignificantBars, bar)
		}
		if record.Extrapolated {
			report.ExtrapolatedBars++
		}
	}

	count := float64(a.timeline.BarCount)
	report.AvgDriftPercent = total / count
	report.StabilityScore = StabilityScore(report.AvgDriftPercent)
	report.StableShare = float64(stable) / count
	report.RecommendedSyncInterval = RecommendedInterval(report.StabilityScore, a.config.MaxInterval)

	a.logger.Debug("drift analysis complete",
		"bars", a.timeline.BarCount,
		"avg_drift_percent", report.AvgDriftPercent,
		"max_drift_percent", report.MaxDriftPercent,
		"max_drift_bar", report.MaxDriftBar,
		"stability_score", report.StabilityScore,
	)
	return report
}

// StabilityScore maps an average drift percentage to [0, 1]: 1 for no
// drift, falling linearly to 0 at an average of 10%.
func StabilityScore(averageDriftPercent float64) float64 {
	return min(1, max(0, 1-averageDriftPercent/10))
}

// RecommendedInterval suggests bars between sync points for a
// stability score: 8 at 0.9 and above, 4 at 0.7, 2 at 0.5, otherwise
// every bar. The result never exceeds maxInterval.
func RecommendedInterval(stability float64, maxInterval int) int {
	interval := 1
	switch {
	case stability >= 0.9:
		interval = 8
	case stability >= 0.7:
		interval = 4
	case stability >= 0.5:
		interval = 2
	}
	return max(1, min(interval, maxInterval))
}
