// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bitstream

import "fmt"

// Writer accumulates bits MSB-first into a growing byte slice. The
// zero value is ready to use.
type Writer struct {
	data []byte
	bit  int
}

// WriteBit appends a single bit. Any non-zero value writes 1.
func (w *Writer) WriteBit(value uint) {
	if w.bit&7 == 0 {
		w.data = append(w.data, 0)
	}
	if value != 0 {
		w.data[len(w.data)-1] |= 1 << (7 - uint(w.bit&7))
	}
	w.bit++
}

// WriteBits appends the low count bits of value, highest bit first.
// It is the inverse of [Reader.ReadBits].
func (w *Writer) WriteBits(value uint64, count uint) {
	if count > MaxReadBits {
		panic(fmt.Sprintf("bitstream: write of %d bits exceeds maximum of %d", count, MaxReadBits))
	}
	for position := int(count) - 1; position >= 0; position-- {
		w.WriteBit(uint(value>>uint(position)) & 1)
	}
}

// WriteBitsReversed appends the low count bits of value, bit 0 first.
// It is the inverse of [Reader.ReadBitsReversed].
func (w *Writer) WriteBitsReversed(value uint64, count uint) {
	if count > MaxReadBits {
		panic(fmt.Sprintf("bitstream: write of %d bits exceeds maximum of %d", count, MaxReadBits))
	}
	for position := range count {
		w.WriteBit(uint(value>>position) & 1)
	}
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.bit
}

// Bytes returns the written bits. The final byte is zero-padded in its
// unused low bits. The returned slice aliases the Writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.data
}
