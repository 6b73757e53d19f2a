// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for guitarprotool.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a parameter struct whose tagged
// fields become flags (see [BindFlags]), and a Run function. Commands are
// assembled into a tree in cmd/guitarprotool/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing, and
// structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// [Globals] carries the flags every command accepts (--config and
// --verbose). It resolves the configuration file and builds the command
// logger, so subcommand packages receive a ready [config.Config] and
// never read GUITARPROTOOL_CONFIG themselves.
//
// Errors returned from Run may be wrapped in a [ToolError] to classify
// them (bad input, missing file, internal failure) for --json callers,
// or be an [ExitError] when the command has already written its own
// output.
package cli
