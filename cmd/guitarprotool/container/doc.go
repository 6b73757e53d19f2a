// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package container implements the guitarprotool commands that work on
// Guitar Pro container files: detect, unpack, pack and repair.
//
// Each command is a thin wrapper: flag handling and output formatting
// live here, decoding lives in lib/gpx. The run functions take their
// output writer explicitly so tests can drive them without a process.
package container
