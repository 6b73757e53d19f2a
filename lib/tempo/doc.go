// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tempo validates detected beat timestamps and corrects the
// octave errors beat trackers make: reporting beats at twice the true
// tempo (double time) or at half of it (half time).
//
// Detection compares the median-interval tempo of the beats with the
// nominal tempo of the score. The two tolerance bands differ in width,
// ±30% around a ratio of 2 and ±7.5% around 0.5;
// see [DefaultBands].
package tempo
