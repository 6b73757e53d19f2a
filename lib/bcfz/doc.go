// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bcfz decodes and encodes the BCFZ stream format that wraps
// the virtual filesystem inside Guitar Pro 6 .gpx files.
//
// A BCFZ stream is an 8-byte header ("BCFZ" followed by the
// decompressed size as a little-endian uint32) and a bit-oriented
// LZ77 token stream read with [bitstream.Reader]. Every token starts
// with a flag bit:
//
//	0  literal run:    count (2 bits, reversed), then count bytes (8 bits each)
//	1  back-reference: width W (4 bits), offset (W bits, reversed),
//	                   length (W bits, reversed)
//
// Back-references copy byte by byte from offset bytes before the end
// of the output, so an offset smaller than the length repeats the
// trailing pattern. The declared size in the header is the stopping
// condition: encoders pad the final byte with zero bits, and those
// bits never become tokens.
//
// [Decompress] is all-or-nothing. Any inconsistency in the stream
// returns a [*MalformedStreamError] and no output. [Compress] produces
// streams that [Decompress] (and Guitar Pro) accept.
package bcfz
