// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "math/rand/v2"

// BeatGrid returns count beats at a constant tempo starting at start
// seconds.
//
//	beats := testutil.BeatGrid(120, 33, 0) // 0.0, 0.5, 1.0, ... 16.0
func BeatGrid(tempoBPM float64, count int, start float64) []float64 {
	interval := 60 / tempoBPM
	beats := make([]float64, count)
	for i := range beats {
		beats[i] = start + float64(i)*interval
	}
	return beats
}

// TempoRamp returns count beats whose tempo changes linearly from
// fromBPM (first interval) to toBPM (last interval).
//
//	beats := testutil.TempoRamp(120, 100, 64*4+1, 0) // 64 bars of 4/4 slowing down
func TempoRamp(fromBPM, toBPM float64, count int, start float64) []float64 {
	beats := make([]float64, count)
	if count == 0 {
		return beats
	}
	beats[0] = start
	intervals := count - 1
	for i := 1; i < count; i++ {
		fraction := 0.0
		if intervals > 1 {
			fraction = float64(i-1) / float64(intervals-1)
		}
		tempo := fromBPM + (toBPM-fromBPM)*fraction
		beats[i] = beats[i-1] + 60/tempo
	}
	return beats
}

// Jitter returns a copy of beats with each timestamp after the first
// moved by a uniform random amount in [-amplitude, amplitude]. The
// same seed always produces the same offsets.
func Jitter(beats []float64, amplitude float64, seed uint64) []float64 {
	random := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	jittered := make([]float64, len(beats))
	for i, beat := range beats {
		if i == 0 {
			jittered[i] = beat
			continue
		}
		jittered[i] = beat + (2*random.Float64()-1)*amplitude
	}
	return jittered
}
