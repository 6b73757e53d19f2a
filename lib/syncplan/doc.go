// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package syncplan turns detected beats and a score timeline into the
// sync points that align a backing track with the tab.
//
// [Planner.Plan] runs the full pipeline: beat validation, octave
// correction ([tempo.Correct]), drift analysis ([drift.Analyzer]) and a
// greedy scan that places a sync point whenever the performance has
// drifted from the tempo of the previous point by more than a
// threshold, or when too many bars have passed without one.
//
// Every frame offset in a [Plan] and its InitialTimeOffset come from
// the same [TimeOrigin], the first valid beat. Frame offsets are
// relative to that beat; InitialTimeOffset is the whole-track shift
// that moves the beat to time zero. A consumer reconstructs a point's
// absolute time with [TimeOrigin.Absolute].
//
// Plans are handed on as CBOR [Document] values (see [EncodeDocument]).
package syncplan
