// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package drift

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/jamiemacari/guitarprotool/lib/tempo"
)

// Report aggregates the per-bar drift of one analysis.
type Report struct {
	Timeline  Timeline `json:"timeline"`
	Origin    float64  `json:"origin_seconds"`
	BeatCount int      `json:"beat_count"`

	Records []BarRecord `json:"records"`

	AvgDriftPercent float64 `json:"avg_drift_percent"`
	MaxDriftPercent float64 `json:"max_drift_percent"`
	MaxDriftBar     int     `json:"max_drift_bar"`

	// StabilityScore is 1 - AvgDriftPercent/10 clamped to [0, 1].
	StabilityScore float64 `json:"stability_score"`

	// StableShare is the fraction of bars classified Stable or Minor.
	StableShare float64 `json:"stable_share"`

	// SignificantBars lists bars classified Moderate or worse.
	SignificantBars []int `json:"significant_bars,omitempty"`

	ExtrapolatedBars int `json:"extrapolated_bars,omitempty"`

	RecommendedSyncInterval int `json:"recommended_sync_interval"`

	// Correction, DetectedTempoBPM and CorrectedTempoBPM describe the
	// octave correction applied before analysis, if any.
	Correction        tempo.Correction `json:"correction"`
	DetectedTempoBPM  float64          `json:"detected_tempo_bpm"`
	CorrectedTempoBPM float64          `json:"corrected_tempo_bpm"`

	// SyncBars lists the bars that received a sync point, ascending.
	SyncBars []int `json:"sync_bars,omitempty"`
}

// HasSync reports whether bar is listed in SyncBars.
func (r *Report) HasSync(bar int) bool {
	_, found := slices.BinarySearch(r.SyncBars, bar)
	return found
}

// SummaryLines returns the headline figures, one per line, for
// terminal display.
func (r *Report) SummaryLines() []string {
	lines := []string{
		fmt.Sprintf("Bars analyzed: %d", len(r.Records)),
		fmt.Sprintf("Average drift: %.2f%%", r.AvgDriftPercent),
		fmt.Sprintf("Maximum drift: %.2f%% at bar %d", r.MaxDriftPercent, r.MaxDriftBar),
		fmt.Sprintf("Stability score: %.0f%%", r.StabilityScore*100),
		fmt.Sprintf("Stable or minor bars: %.0f%%", r.StableShare*100),
		fmt.Sprintf("Recommended sync interval: every %d bar(s)", r.RecommendedSyncInterval),
	}
	if r.Correction != tempo.CorrectionNone {
		lines = append(lines, fmt.Sprintf("Tempo correction: %s, %.1f -> %.1f BPM",
			r.Correction, r.DetectedTempoBPM, r.CorrectedTempoBPM))
	}
	if len(r.SignificantBars) > 0 {
		lines = append(lines, fmt.Sprintf("Bars needing attention: %d", len(r.SignificantBars)))
	}
	if r.ExtrapolatedBars > 0 {
		lines = append(lines, fmt.Sprintf("Bars past the last detected beat: %d", r.ExtrapolatedBars))
	}
	return lines
}

const (
	heavyRule = "======================================================================"
	lightRule = "----------------------------------------"
	tableRule = "--------------------------------------------------------------------------------"
)

// WriteText writes the full report: correction, summary, one line per
// bar with a <<SYNC marker on bars in SyncBars, and a legend. The
// output depends only on the report's contents.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(heavyRule)
	line("TEMPO DRIFT ANALYSIS REPORT")
	line(heavyRule)
	line("")

	switch r.Correction {
	case tempo.CorrectionNone:
		line("TEMPO CORRECTION: None applied")
		line(lightRule)
		line("Detected BPM: %.1f (nominal %.1f)", r.DetectedTempoBPM, r.Timeline.TempoBPM)
	default:
		line("TEMPO CORRECTION APPLIED")
		line(lightRule)
		line("Original detected BPM: %.1f", r.DetectedTempoBPM)
		line("Corrected BPM:         %.1f", r.CorrectedTempoBPM)
		line("Correction type:       %s", describeCorrection(r.Correction))
	}
	line("")

	line("SUMMARY")
	line(lightRule)
	for _, summary := range r.SummaryLines() {
		line("%s", summary)
	}
	if len(r.SyncBars) > 0 {
		line("Sync points placed: %d bars", len(r.SyncBars))
	}
	line("")

	line(heavyRule)
	line("BAR-BY-BAR DRIFT ANALYSIS")
	line(heavyRule)
	line("")
	line("%6s | %10s | %10s | %10s | %10s | %12s | %s",
		"Bar", "Expected", "Actual", "Local BPM", "Drift %", "Severity", "Sync")
	line(tableRule)
	for _, record := range r.Records {
		extrapolated := ' '
		if record.Extrapolated {
			extrapolated = '*'
		}
		sync := ""
		if r.HasSync(record.Bar) {
			sync = "<<SYNC"
		}
		line("%6d | %10.3f | %10.3f%c| %10.2f | %10.2f | %12s | %s",
			record.Bar, record.ExpectedTime, record.ActualTime, extrapolated,
			record.LocalTempoBPM, record.DriftPercent, record.Severity, sync)
	}
	line("")

	line(heavyRule)
	line("LEGEND")
	line(lightRule)
	line("Expected: seconds after the first beat at the nominal tempo")
	line("Actual: seconds after the first beat in the detected beats (* = extrapolated)")
	line("Local BPM: detected tempo around the bar's first beat")
	line("Nominal BPM: %.2f, %d beats per bar", r.Timeline.TempoBPM, r.Timeline.BeatsPerBar)
	line("Sync: <<SYNC marks a bar that received a sync point")
	line("")
	line("Severity levels:")
	line("  stable:      below 1%% drift")
	line("  minor:       1%% to below 3%%")
	line("  moderate:    3%% to below 5%%")
	line("  significant: 5%% to below 10%%")
	line("  severe:      10%% and above")
	line("")
	line(heavyRule)

	_, err := io.WriteString(w, b.String())
	return err
}

func describeCorrection(correction tempo.Correction) string {
	switch correction {
	case tempo.CorrectionDoubleTime:
		return "double-time (every other beat dropped)"
	case tempo.CorrectionHalfTime:
		return "half-time (midpoints inserted)"
	}
	return correction.String()
}

// WriteBeatDebug writes every beat with its interval, instantaneous
// tempo and bar position, followed by interval statistics. beats are
// written as given, without validation.
func WriteBeatDebug(w io.Writer, beats []float64, timeline Timeline) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	expectedInterval := timeline.BeatDuration()
	origin := 0.0
	if len(beats) > 0 {
		origin = beats[0]
	}
	beatsPerBar := max(1, timeline.BeatsPerBar)

	line(heavyRule)
	line("BEAT DETECTION DEBUG DATA")
	line(heavyRule)
	line("")
	line("Nominal tempo: %.2f BPM", timeline.TempoBPM)
	line("Expected beat interval: %.4fs", expectedInterval)
	line("First beat time: %.4fs", origin)
	line("Total beats detected: %d", len(beats))
	line("")
	line(heavyRule)
	line("BEAT-BY-BEAT DATA")
	line(heavyRule)
	line("")
	line("%6s | %12s | %12s | %10s | %10s | %6s | %12s",
		"Beat", "Time (s)", "Rel Time", "Interval", "Inst BPM", "Bar", "Beat in Bar")
	line("------------------------------------------------------------------------------------------")
	for i, beat := range beats {
		interval, bpm := "-", "-"
		if i > 0 {
			gap := beat - beats[i-1]
			interval = fmt.Sprintf("%.4f", gap)
			if gap > 0 {
				bpm = fmt.Sprintf("%.2f", 60/gap)
			}
		}
		line("%6d | %12.4f | %12.4f | %10s | %10s | %6d | %12d",
			i, beat, beat-origin, interval, bpm, i/beatsPerBar, i%beatsPerBar)
	}

	if intervals := tempo.Intervals(beats); len(intervals) > 0 {
		mean, deviation := meanAndDeviation(intervals)
		shortest, longest := slices.Min(intervals), slices.Max(intervals)
		line("")
		line(heavyRule)
		line("INTERVAL STATISTICS")
		line(heavyRule)
		line("")
		line("Average interval: %.4fs (= %s BPM)", mean, bpmOf(mean))
		line("Std deviation: %.4fs", deviation)
		line("Min interval: %.4fs (= %s BPM)", shortest, bpmOf(shortest))
		line("Max interval: %.4fs (= %s BPM)", longest, bpmOf(longest))
		line("Interval spread: %.4fs", longest-shortest)
		line("")
		line("Expected interval: %.4fs (nominal tempo)", expectedInterval)
		line("Deviation from expected: %.4fs (%.2f%%)",
			mean-expectedInterval, (mean-expectedInterval)/expectedInterval*100)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func bpmOf(interval float64) string {
	if interval <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", 60/interval)
}

// meanAndDeviation returns the mean and population standard deviation.
func meanAndDeviation(values []float64) (float64, float64) {
	var sum float64
	for _, value := range values {
		sum += value
	}
	mean := sum / float64(len(values))
	var squares float64
	for _, value := range values {
		squares += (value - mean) * (value - mean)
	}
	return mean, math.Sqrt(squares / float64(len(values)))
}
