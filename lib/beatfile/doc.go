// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package beatfile reads beat timestamps produced by an external beat
// tracker.
//
// Two formats are accepted:
//
//   - Text: one timestamp in seconds per line. Anything after # is a
//     comment and blank lines are skipped. A line may carry further
//     comma- or whitespace-separated columns (a confidence, a beat
//     number); only the first is read, so CSV exports work unchanged.
//
//   - JSON or JSONC (JSON with // and /* */ comments and trailing
//     commas): either a bare array of timestamps or an object
//
//     {"beats": [0.51, 1.02, ...], "tempo": 120, "beats_per_bar": 4, "bars": 64}
//
//     where every field but beats is optional.
//
// [Parse] picks the format from the content: JSON when the first
// non-space byte is '[' or '{', text otherwise. Timestamps are
// returned as written; validation is the sync planner's job.
package beatfile
