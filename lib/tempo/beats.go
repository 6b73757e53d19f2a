// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tempo

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInsufficientBeats is returned when fewer than two valid beats
// remain, so no interval (and no tempo) can be measured.
var ErrInsufficientBeats = errors.New("tempo: at least two valid beats are required")

// Sanitize returns the beats that are finite, non-negative and
// strictly later than the previous kept beat, along with the number
// dropped. The input is not modified.
func Sanitize(beats []float64) ([]float64, int) {
	valid := make([]float64, 0, len(beats))
	for _, beat := range beats {
		if math.IsNaN(beat) || math.IsInf(beat, 0) || beat < 0 {
			continue
		}
		if len(valid) > 0 && beat <= valid[len(valid)-1] {
			continue
		}
		valid = append(valid, beat)
	}
	return valid, len(beats) - len(valid)
}

// Intervals returns the differences between consecutive beats.
func Intervals(beats []float64) []float64 {
	if len(beats) < 2 {
		return nil
	}
	intervals := make([]float64, len(beats)-1)
	for i := range intervals {
		intervals[i] = beats[i+1] - beats[i]
	}
	return intervals
}

// Median returns the median of values, averaging the middle pair for
// even lengths. It returns NaN for an empty slice. values is not
// modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return (sorted[middle-1] + sorted[middle]) / 2
}

// DetectTempo returns 60 / median(intervals) in BPM.
func DetectTempo(beats []float64) (float64, error) {
	if len(beats) < 2 {
		return 0, fmt.Errorf("%w: got %d", ErrInsufficientBeats, len(beats))
	}
	interval := Median(Intervals(beats))
	if !(interval > 0) || math.IsInf(interval, 0) {
		return 0, fmt.Errorf("tempo: median beat interval %v is not positive", interval)
	}
	return 60 / interval, nil
}
