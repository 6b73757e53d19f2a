// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package drift measures, bar by bar, how far a recorded performance
// wanders from the schedule a score's nominal tempo implies.
//
// A [Timeline] describes the score side: nominal tempo, beats per bar
// and bar count. The performance side is a sequence of detected beat
// timestamps. The first valid beat is the time origin, so bar b is
// expected at
//
//	expected(b) = b * beatsPerBar * 60 / tempo
//
// seconds after it and actually lands at the beat with index
// b * beatsPerBar (or, with [MatchNearest], the detected beat closest
// to the expected time). Bars past the last detected beat are
// extrapolated at the tempo of the final window of beats.
//
// Drift is the cumulative timing error as a percentage of the expected
// offset, |actual - expected| / expected * 100, defined as 0 at bar 0.
// [Classify] buckets it into a [Severity] using lower-bound-inclusive
// thresholds: exactly 1.0% is Minor, 3.0% Moderate, 5.0% Significant
// and 10.0% Severe.
//
// [Analyzer.Analyze] aggregates the per-bar [BarRecord] values into a
// [Report], which renders as a fixed-layout text file with
// [Report.WriteText].
package drift
