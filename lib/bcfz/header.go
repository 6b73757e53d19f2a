// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the four-byte signature at the start of every BCFZ stream.
const Magic = "BCFZ"

// HeaderSize is the length of the fixed header: magic plus the
// declared decompressed size.
const HeaderSize = 8

// ErrBadMagic is wrapped by the error returned when input does not
// start with [Magic].
var ErrBadMagic = errors.New("bcfz: missing BCFZ magic")

// Header is the fixed-format prefix of a BCFZ stream.
type Header struct {
	// DecompressedSize is the exact length of the decoded output.
	DecompressedSize uint32
}

// ParseHeader reads the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], []byte(Magic)) {
		prefix := data[:min(len(data), len(Magic))]
		return Header{}, &MalformedStreamError{
			Offset: 0,
			Reason: fmt.Sprintf("header starts with %q", prefix),
			Err:    ErrBadMagic,
		}
	}
	if len(data) < HeaderSize {
		return Header{}, &MalformedStreamError{
			Offset: len(data),
			Reason: fmt.Sprintf("header truncated at %d of %d bytes", len(data), HeaderSize),
		}
	}
	return Header{
		DecompressedSize: binary.LittleEndian.Uint32(data[len(Magic):HeaderSize]),
	}, nil
}

// IsCompressed reports whether data starts with a complete BCFZ header.
func IsCompressed(data []byte) bool {
	_, err := ParseHeader(data)
	return err == nil
}

func appendHeader(dst []byte, header Header) []byte {
	dst = append(dst, Magic...)
	return binary.LittleEndian.AppendUint32(dst, header.DecompressedSize)
}
