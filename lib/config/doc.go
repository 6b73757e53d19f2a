// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for guitarprotool.
//
// Configuration is loaded from a single file named by either the
// GUITARPROTOOL_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no ~/.config discovery and no
// automatic file search. A command run without either uses [Default].
//
// The file has five sections:
//
//   - sync: sample rate, drift threshold, gap limits and drift analysis
//     settings of the sync planner
//   - tempo_correction: octave-error detection bands
//   - container: decompression shortfall tolerance and XML repairs
//   - cache: the unpacked-container cache directory
//   - logging: level and handler format
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${XDG_CACHE_HOME} and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// This package depends on no other guitarprotool packages. Commands
// translate the loaded values into each library's own options.
package config
