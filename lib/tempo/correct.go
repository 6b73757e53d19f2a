// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tempo

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Correction identifies the octave correction applied to a beat set.
type Correction int

const (
	CorrectionNone Correction = iota
	// CorrectionDoubleTime means the tracker reported twice the true
	// tempo; every other beat was dropped.
	CorrectionDoubleTime
	// CorrectionHalfTime means the tracker reported half the true
	// tempo; a midpoint was inserted between each pair of beats.
	CorrectionHalfTime
)

var correctionNames = map[Correction]string{
	CorrectionNone:       "none",
	CorrectionDoubleTime: "double-time",
	CorrectionHalfTime:   "half-time",
}

func (c Correction) String() string {
	if name, ok := correctionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Correction(%d)", int(c))
}

// MarshalText encodes the correction by name for JSON, YAML and CBOR.
func (c Correction) MarshalText() ([]byte, error) {
	name, ok := correctionNames[c]
	if !ok {
		return nil, fmt.Errorf("tempo: unknown correction %d", int(c))
	}
	return []byte(name), nil
}

func (c *Correction) UnmarshalText(text []byte) error {
	for value, name := range correctionNames {
		if name == string(text) {
			*c = value
			return nil
		}
	}
	return fmt.Errorf("tempo: unknown correction %q", text)
}

// Bands are the relative tolerances around the two octave-error
// ratios. A detected/nominal ratio r is double time when
// |r - 2| <= 2*DoubleTimeTolerance and half time when
// |r - 0.5| <= 0.5*HalfTimeTolerance.
type Bands struct {
	DoubleTimeTolerance float64 `yaml:"double_time_tolerance" json:"double_time_tolerance"`
	HalfTimeTolerance   float64 `yaml:"half_time_tolerance" json:"half_time_tolerance"`
}

// DefaultBands returns ±30% around double time and ±7.5% around half
// time. The asymmetry comes from field use of the beat tracker and has
// not been recalibrated against measured data.
func DefaultBands() Bands {
	return Bands{DoubleTimeTolerance: 0.30, HalfTimeTolerance: 0.075}
}

// Validate rejects bands that are negative or wide enough to reach a
// ratio of 1, where no correction can be right.
func (b Bands) Validate() error {
	var errs []error
	if !(b.DoubleTimeTolerance >= 0 && b.DoubleTimeTolerance < 0.5) {
		errs = append(errs, fmt.Errorf("double-time tolerance %v must be in [0, 0.5)", b.DoubleTimeTolerance))
	}
	if !(b.HalfTimeTolerance >= 0 && b.HalfTimeTolerance < 1) {
		errs = append(errs, fmt.Errorf("half-time tolerance %v must be in [0, 1)", b.HalfTimeTolerance))
	}
	return errors.Join(errs...)
}

// Classify returns the correction a detected/nominal tempo ratio calls
// for.
func (b Bands) Classify(ratio float64) Correction {
	switch {
	case math.Abs(ratio-2) <= 2*b.DoubleTimeTolerance:
		return CorrectionDoubleTime
	case math.Abs(ratio-0.5) <= 0.5*b.HalfTimeTolerance:
		return CorrectionHalfTime
	}
	return CorrectionNone
}

// Result is the outcome of [Correct].
type Result struct {
	// Beats is the corrected beat sequence. It never aliases the input.
	Beats []float64

	Correction Correction

	// DetectedTempo is the median-interval tempo of the input beats and
	// CorrectedTempo the same measure after correction.
	DetectedTempo  float64
	CorrectedTempo float64

	// Ratio is DetectedTempo / nominal tempo.
	Ratio float64
}

// Applied reports whether the beats were changed.
func (r Result) Applied() bool {
	return r.Correction != CorrectionNone
}

// Correct detects a double- or half-time beat set relative to
// nominalTempo and returns the corrected beats. beats must already be
// sanitized (see [Sanitize]).
func Correct(beats []float64, nominalTempo float64, bands Bands) (Result, error) {
	if !(nominalTempo > 0) || math.IsInf(nominalTempo, 0) {
		return Result{}, fmt.Errorf("tempo: nominal tempo %v must be positive and finite", nominalTempo)
	}
	if err := bands.Validate(); err != nil {
		return Result{}, fmt.Errorf("tempo: invalid bands: %w", err)
	}
	detected, err := DetectTempo(beats)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		DetectedTempo: detected,
		Ratio:         detected / nominalTempo,
	}
	result.Correction = bands.Classify(result.Ratio)

	switch result.Correction {
	case CorrectionDoubleTime:
		result.Beats = everyOther(beats)
	case CorrectionHalfTime:
		result.Beats = withMidpoints(beats)
	default:
		result.Beats = slices.Clone(beats)
	}

	result.CorrectedTempo, err = DetectTempo(result.Beats)
	if err != nil {
		return Result{}, fmt.Errorf("tempo: after %s correction: %w", result.Correction, err)
	}
	return result, nil
}

// everyOther keeps the beats at even indices, starting with the first.
func everyOther(beats []float64) []float64 {
	kept := make([]float64, 0, (len(beats)+1)/2)
	for i := 0; i < len(beats); i += 2 {
		kept = append(kept, beats[i])
	}
	return kept
}

func withMidpoints(beats []float64) []float64 {
	if len(beats) == 0 {
		return nil
	}
	doubled := make([]float64, 0, 2*len(beats)-1)
	for i, beat := range beats {
		if i > 0 {
			doubled = append(doubled, (beats[i-1]+beat)/2)
		}
		doubled = append(doubled, beat)
	}
	return doubled
}
