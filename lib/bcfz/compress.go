// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfz

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/jamiemacari/guitarprotool/lib/bitstream"
)

const (
	// maxWidth is the largest value the 4-bit width field can carry.
	// Offsets and lengths are therefore below 1<<15.
	maxWidth    = 15
	maxDistance = 1<<maxWidth - 1
	maxLength   = 1<<maxWidth - 1

	// maxLiteralRun is the largest count a 2-bit literal header holds.
	maxLiteralRun = 3

	minMatch  = 3
	hashBits  = 15
	maxChain  = 64
	noHistory = -1

	// literalBitsPerByte is the amortised cost of a byte inside a full
	// three-byte literal run: (1 + 2 + 24) / 3.
	literalBitsPerByte = 9
)

// Compress encodes data as a complete BCFZ stream, header included.
// The encoder is a greedy LZ77 over a hash-chained window of the
// previous 32767 bytes. It returns an error only when data is too large
// for the 32-bit size field.
func Compress(data []byte) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("bcfz: input of %d bytes exceeds the 32-bit size field", len(data))
	}

	var writer bitstream.Writer
	matcher := newMatcher(data)
	pending := 0
	position := 0
	for position < len(data) {
		length, distance := matcher.longest(position)
		if length >= minMatch {
			width := uint(bits.Len(uint(max(length, distance))))
			if tokenBits(width) < length*literalBitsPerByte {
				writeLiterals(&writer, data[pending:position])
				writer.WriteBit(1)
				writer.WriteBits(uint64(width), 4)
				writer.WriteBitsReversed(uint64(distance), width)
				writer.WriteBitsReversed(uint64(length), width)
				for covered := position; covered < position+length; covered++ {
					matcher.insert(covered)
				}
				position += length
				pending = position
				continue
			}
		}
		matcher.insert(position)
		position++
	}
	writeLiterals(&writer, data[pending:])

	payload := writer.Bytes()
	output := make([]byte, 0, HeaderSize+len(payload))
	output = appendHeader(output, Header{DecompressedSize: uint32(len(data))})
	return append(output, payload...), nil
}

func tokenBits(width uint) int {
	return 1 + 4 + 2*int(width)
}

func writeLiterals(writer *bitstream.Writer, literals []byte) {
	for len(literals) > 0 {
		count := min(len(literals), maxLiteralRun)
		writer.WriteBit(0)
		writer.WriteBitsReversed(uint64(count), 2)
		for _, value := range literals[:count] {
			writer.WriteBits(uint64(value), 8)
		}
		literals = literals[count:]
	}
}

// matcher indexes every position by the hash of the three bytes that
// start there. head holds the most recent position per hash and
// previous links each position to the one before it with the same hash.
type matcher struct {
	data     []byte
	head     []int32
	previous []int32
}

func newMatcher(data []byte) *matcher {
	head := make([]int32, 1<<hashBits)
	for i := range head {
		head[i] = noHistory
	}
	return &matcher{
		data:     data,
		head:     head,
		previous: make([]int32, len(data)),
	}
}

func (m *matcher) hash(position int) uint32 {
	value := uint32(m.data[position])<<16 | uint32(m.data[position+1])<<8 | uint32(m.data[position+2])
	return (value * 2654435761) >> (32 - hashBits)
}

func (m *matcher) insert(position int) {
	if position+minMatch > len(m.data) {
		return
	}
	key := m.hash(position)
	m.previous[position] = m.head[key]
	m.head[key] = int32(position)
}

// longest returns the longest match for the bytes at position among
// earlier positions within maxDistance. Matches may run into the bytes
// being encoded; the decoder's byte-at-a-time copy reproduces them.
func (m *matcher) longest(position int) (length, distance int) {
	if position+minMatch > len(m.data) {
		return 0, 0
	}
	limit := min(maxLength, len(m.data)-position)
	candidate := m.head[m.hash(position)]
	for depth := 0; depth < maxChain && candidate != noHistory; depth++ {
		offset := position - int(candidate)
		if offset > maxDistance {
			break
		}
		matched := 0
		for matched < limit && m.data[int(candidate)+matched] == m.data[position+matched] {
			matched++
		}
		if matched > length {
			length, distance = matched, offset
			if matched == limit {
				break
			}
		}
		candidate = m.previous[candidate]
	}
	return length, distance
}
