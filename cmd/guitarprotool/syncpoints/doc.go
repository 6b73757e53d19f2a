// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package syncpoints implements the guitarprotool commands that plan
// and inspect audio sync points: sync and inspect.
//
// sync reads beat timestamps from a beat file, plans sync points
// against the score's nominal tempo with lib/syncplan, and writes the
// plan as a CBOR document for whatever places the points into the
// score. inspect reads such a document back.
package syncpoints
