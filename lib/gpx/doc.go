// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gpx opens and writes Guitar Pro 6 (.gpx) containers.
//
// A .gpx file is a BCFZ stream (see lib/bcfz) whose payload is a BCFS
// sector image (see lib/bcfs) holding flat-named files: score.gpif
// (the score as XML), misc.xml, and binary stylesheet and layout
// files. [Open] detects the format, decompresses and unpacks it,
// optionally consulting an unpack cache, then runs the XML repair pass
// (see lib/xmlrepair) over the XML entries. [Write] is the inverse.
//
// [DetectFormat] also recognises the formats this package does not
// open (Guitar Pro 7/8 ZIP files and Guitar Pro 3-5 binaries) so
// callers can report them precisely.
package gpx
