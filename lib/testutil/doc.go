// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for guitarprotool
// packages.
//
// [BeatGrid], [TempoRamp] and [Jitter] synthesise the beat timestamps a
// beat tracker would report for steady, accelerating or noisy
// performances. They are deterministic: Jitter takes an explicit seed
// so a failing test reproduces exactly.
//
// [RequireNear] compares floating-point results within a tolerance.
// [WriteFile] places a fixture in a per-test temporary directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no guitarprotool-internal dependencies.
package testutil
