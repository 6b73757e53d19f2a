// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bitstream

import (
	"errors"
	"fmt"
)

// ErrEndOfStream is returned when a read requests more bits than
// remain in the buffer. Errors returned by [Reader] wrap it with the
// byte offset at which the read was attempted; match with errors.Is.
var ErrEndOfStream = errors.New("bitstream: end of stream")

// MaxReadBits is the widest field a single ReadBits or
// ReadBitsReversed call can return.
const MaxReadBits = 64

// Cursor is a saved read position. Obtain one with [Reader.Mark] and
// restore it with [Reader.Reset].
type Cursor struct {
	bit int
}

// Reader is a sequential bit cursor over an immutable byte slice. The
// zero value reads from an empty buffer. A Reader is not safe for
// concurrent use; each decode pass owns its own Reader.
type Reader struct {
	data []byte
	// bit is the absolute index of the next unread bit: byte bit/8,
	// bit position 7-(bit%8) within that byte.
	bit int
}

// NewReader returns a Reader positioned at the first bit of data. The
// slice is not copied and must not be modified while the Reader is in
// use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBit returns the next bit as 0 or 1.
func (r *Reader) ReadBit() (uint, error) {
	if r.bit >= len(r.data)*8 {
		return 0, r.endOfStream(1)
	}
	value := uint(r.data[r.bit>>3]>>(7-uint(r.bit&7))) & 1
	r.bit++
	return value, nil
}

// ReadBits reads count bits and assembles them MSB-first. A count of
// zero returns 0 without consuming anything. If fewer than count bits
// remain, nothing is consumed.
func (r *Reader) ReadBits(count uint) (uint64, error) {
	if err := r.require(count); err != nil {
		return 0, err
	}
	var value uint64
	for range count {
		value = value<<1 | uint64(r.next())
	}
	return value, nil
}

// ReadBitsReversed reads count bits and assembles them LSB-first: the
// first bit read becomes bit 0 of the result. Same atomicity contract
// as [Reader.ReadBits].
func (r *Reader) ReadBitsReversed(count uint) (uint64, error) {
	if err := r.require(count); err != nil {
		return 0, err
	}
	var value uint64
	for position := range count {
		value |= uint64(r.next()) << position
	}
	return value, nil
}

// BitsRemaining returns the number of unread bits.
func (r *Reader) BitsRemaining() int {
	return len(r.data)*8 - r.bit
}

// Offset returns the index of the byte containing the next unread bit.
// After the last bit has been consumed it equals len(data).
func (r *Reader) Offset() int {
	return r.bit >> 3
}

// Exhausted reports whether every bit has been consumed.
func (r *Reader) Exhausted() bool {
	return r.BitsRemaining() <= 0
}

// Mark returns the current position.
func (r *Reader) Mark() Cursor {
	return Cursor{bit: r.bit}
}

// Reset moves the cursor back (or forward) to a position previously
// returned by [Reader.Mark] on the same Reader.
func (r *Reader) Reset(cursor Cursor) {
	r.bit = cursor.bit
}

// require validates a multi-bit read before any bit is consumed.
func (r *Reader) require(count uint) error {
	if count > MaxReadBits {
		return fmt.Errorf("bitstream: read of %d bits exceeds maximum of %d", count, MaxReadBits)
	}
	if int(count) > r.BitsRemaining() {
		return r.endOfStream(count)
	}
	return nil
}

// next consumes one bit. The caller has already checked bounds.
func (r *Reader) next() uint {
	value := uint(r.data[r.bit>>3]>>(7-uint(r.bit&7))) & 1
	r.bit++
	return value
}

func (r *Reader) endOfStream(count uint) error {
	return fmt.Errorf("%w: need %d bit(s) at byte %d, %d remaining",
		ErrEndOfStream, count, r.Offset(), r.BitsRemaining())
}
