// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bitstream provides bit-granular readers and writers over
// in-memory byte buffers.
//
// Bits are consumed most-significant-bit first within each byte, which
// is the order the BCFZ container format uses. Multi-bit fields come in
// two assemblies:
//
//   - [Reader.ReadBits] assembles MSB-first: the first bit read becomes
//     the highest bit of the result.
//   - [Reader.ReadBitsReversed] assembles LSB-first: the first bit read
//     becomes bit 0. BCFZ stores its literal counts, back-reference
//     offsets, and lengths this way.
//
// Multi-bit reads are atomic. When fewer bits remain than requested,
// the read fails with [ErrEndOfStream] and the cursor does not move, so
// a caller can inspect [Reader.Offset] or retry with a smaller width.
//
// [Writer] is the exact inverse and exists so that encoders and tests
// can produce streams that [Reader] decodes.
//
// This package has no guitarprotool-internal dependencies.
package bitstream
