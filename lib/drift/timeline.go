// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package drift

import (
	"fmt"
	"math"
	"strings"
)

// Timeline is the score-side schedule: a constant nominal tempo over a
// fixed number of equal bars.
type Timeline struct {
	TempoBPM    float64 `json:"tempo_bpm"`
	BeatsPerBar int     `json:"beats_per_bar"`
	BarCount    int     `json:"bar_count"`
}

// InvalidTimelineError lists every problem found in a [Timeline].
type InvalidTimelineError struct {
	Timeline Timeline
	Problems []string
}

func (e *InvalidTimelineError) Error() string {
	return "drift: invalid timeline: " + strings.Join(e.Problems, "; ")
}

// Validate returns an [*InvalidTimelineError] unless the tempo is
// positive and finite and both counts are positive.
func (t Timeline) Validate() error {
	var problems []string
	if !(t.TempoBPM > 0) || math.IsInf(t.TempoBPM, 0) {
		problems = append(problems, fmt.Sprintf("tempo %v BPM must be positive and finite", t.TempoBPM))
	}
	if t.BeatsPerBar <= 0 {
		problems = append(problems, fmt.Sprintf("beats per bar %d must be positive", t.BeatsPerBar))
	}
	if t.BarCount <= 0 {
		problems = append(problems, fmt.Sprintf("bar count %d must be positive", t.BarCount))
	}
	if len(problems) > 0 {
		return &InvalidTimelineError{Timeline: t, Problems: problems}
	}
	return nil
}

// BeatDuration is the nominal length of one beat in seconds.
func (t Timeline) BeatDuration() float64 {
	return 60 / t.TempoBPM
}

// BarDuration is the nominal length of one bar in seconds.
func (t Timeline) BarDuration() float64 {
	return float64(t.BeatsPerBar) * t.BeatDuration()
}

// ExpectedTime is the offset of bar's first beat from bar 0 under the
// nominal tempo.
func (t Timeline) ExpectedTime(bar int) float64 {
	return float64(bar) * t.BarDuration()
}
