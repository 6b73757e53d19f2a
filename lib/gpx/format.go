// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpx

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamiemacari/guitarprotool/lib/bcfs"
	"github.com/jamiemacari/guitarprotool/lib/bcfz"
)

// Format is a Guitar Pro file format.
type Format int

const (
	FormatUnknown Format = iota
	// FormatBCFZ is a compressed Guitar Pro 6 container (.gpx).
	FormatBCFZ
	// FormatBCFS is an uncompressed sector image, as found inside a
	// BCFZ stream.
	FormatBCFS
	// FormatZIP is a Guitar Pro 7/8 file (.gp).
	FormatZIP
	// FormatLegacy is a Guitar Pro 3-5 binary (.gp3, .gp4, .gp5).
	FormatLegacy
)

var formatNames = [...]string{
	FormatUnknown: "unknown",
	FormatBCFZ:    "bcfz",
	FormatBCFS:    "bcfs",
	FormatZIP:     "zip",
	FormatLegacy:  "legacy",
}

var formatDescriptions = [...]string{
	FormatUnknown: "unrecognised data",
	FormatBCFZ:    "Guitar Pro 6 compressed container (BCFZ)",
	FormatBCFS:    "Guitar Pro 6 uncompressed container (BCFS)",
	FormatZIP:     "Guitar Pro 7/8 ZIP archive",
	FormatLegacy:  "Guitar Pro 3-5 binary",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Description is a human-readable name for f.
func (f Format) Description() string {
	if f >= 0 && int(f) < len(formatDescriptions) {
		return formatDescriptions[f]
	}
	return f.String()
}

func (f Format) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(formatNames) {
		return nil, fmt.Errorf("gpx: unknown format %d", int(f))
	}
	return []byte(formatNames[f]), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	for value, name := range formatNames {
		if name == string(text) {
			*f = Format(value)
			return nil
		}
	}
	return fmt.Errorf("gpx: unknown format %q", text)
}

// Openable reports whether [Open] can read f.
func (f Format) Openable() bool {
	return f == FormatBCFZ || f == FormatBCFS
}

// legacyMagic follows a one-byte length prefix in Guitar Pro 3-5 files.
const legacyMagic = "FICHIER GUITAR PRO"

var zipMagic = []byte("PK\x03\x04")

// DetectFormat identifies data by its leading bytes.
func DetectFormat(data []byte) Format {
	switch {
	case bcfz.IsCompressed(data):
		return FormatBCFZ
	case bytes.HasPrefix(data, []byte(bcfs.Magic)):
		return FormatBCFS
	case bytes.HasPrefix(data, zipMagic):
		return FormatZIP
	case len(data) > 1 && bytes.HasPrefix(data[1:], []byte(legacyMagic)):
		return FormatLegacy
	}
	return FormatUnknown
}

// FormatFromExtension maps a file name's extension to the format such
// files normally hold. Content always wins over the name; this is for
// messages about files that could not be read.
func FormatFromExtension(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gpx":
		return FormatBCFZ
	case ".gp":
		return FormatZIP
	case ".gp3", ".gp4", ".gp5":
		return FormatLegacy
	}
	return FormatUnknown
}

// UnsupportedFormatError is returned by [Open] for data it cannot read.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("gpx: cannot open %s", e.Format.Description())
}
