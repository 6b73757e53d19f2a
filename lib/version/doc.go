// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the
// guitarprotool binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// When they are not injected (go install, go run, tests), [Current]
// fills GitCommit, GitDirty and BuildTime from the VCS stamp the Go
// toolchain embeds, where available.
//
//   - [Info] -- "0.1.0-dev (abc1234, 2026-02-10T...)" for version output
//   - [Full] -- Info plus Go version and GOOS/GOARCH
//   - [Current] -- the same data as a [Build] for --json output
package version
