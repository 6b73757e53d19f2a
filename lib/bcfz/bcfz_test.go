// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfz

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/jamiemacari/guitarprotool/lib/bitstream"
)

// streamBuilder assembles BCFZ token streams bit by bit so tests can
// express exact token sequences.
type streamBuilder struct {
	writer bitstream.Writer
}

func (b *streamBuilder) literal(values ...byte) *streamBuilder {
	b.writer.WriteBit(0)
	b.writer.WriteBitsReversed(uint64(len(values)), 2)
	for _, value := range values {
		b.writer.WriteBits(uint64(value), 8)
	}
	return b
}

func (b *streamBuilder) backReference(width uint, offset, length uint64) *streamBuilder {
	b.writer.WriteBit(1)
	b.writer.WriteBits(uint64(width), 4)
	b.writer.WriteBitsReversed(offset, width)
	b.writer.WriteBitsReversed(length, width)
	return b
}

func (b *streamBuilder) build(declared uint32) []byte {
	return append(appendHeader(nil, Header{DecompressedSize: declared}), b.writer.Bytes()...)
}

func TestParseHeader(t *testing.T) {
	header, err := ParseHeader([]byte("BCFZ\x10\x27\x00\x00payload"))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if header.DecompressedSize != 10000 {
		t.Errorf("DecompressedSize = %d, want 10000", header.DecompressedSize)
	}
}

func TestParseHeaderRejects(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		badMagic bool
	}{
		{"empty", nil, true},
		{"wrong magic", []byte("BCFS\x00\x00\x00\x00"), true},
		{"short magic", []byte("BC"), true},
		{"truncated size", []byte("BCFZ\x01\x02"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.data)
			var malformed *MalformedStreamError
			if !errors.As(err, &malformed) {
				t.Fatalf("ParseHeader error = %v, want *MalformedStreamError", err)
			}
			if errors.Is(err, ErrBadMagic) != tt.badMagic {
				t.Errorf("errors.Is(err, ErrBadMagic) = %v, want %v (err: %v)", !tt.badMagic, tt.badMagic, err)
			}
			if IsCompressed(tt.data) {
				t.Error("IsCompressed should be false")
			}
		})
	}
}

func TestDecompressTokens(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		want   string
	}{
		{
			name:   "literal runs",
			stream: new(streamBuilder).literal('G', 'P', 'X').literal('6').build(4),
			want:   "GPX6",
		},
		{
			name:   "distance one repeats a single byte",
			stream: new(streamBuilder).literal('x').backReference(3, 1, 7).build(8),
			want:   "xxxxxxxx",
		},
		{
			name:   "overlapping pattern copy",
			stream: new(streamBuilder).literal('a', 'b', 'c').backReference(4, 3, 8).build(11),
			want:   "abcabcabcab",
		},
		{
			name:   "non-overlapping copy",
			stream: new(streamBuilder).literal('a', 'b', 'c').literal('d').backReference(3, 4, 2).build(6),
			want:   "abcdab",
		},
		{
			name:   "zero width token is skipped",
			stream: new(streamBuilder).literal('a').backReference(0, 0, 0).literal('b').build(2),
			want:   "ab",
		},
		{
			name:   "zero length back-reference is skipped",
			stream: new(streamBuilder).literal('a').backReference(2, 1, 0).literal('b').build(2),
			want:   "ab",
		},
		{
			name:   "empty literal run",
			stream: new(streamBuilder).literal().literal('z').build(1),
			want:   "z",
		},
		{
			name:   "declared size clips a long copy",
			stream: new(streamBuilder).literal('-').backReference(6, 1, 40).build(5),
			want:   "-----",
		},
		{
			name:   "declared size clips a literal run",
			stream: new(streamBuilder).literal('a', 'b', 'c').build(2),
			want:   "ab",
		},
		{
			name:   "tokens after the declared size are ignored",
			stream: new(streamBuilder).literal('o', 'k').backReference(5, 31, 31).build(2),
			want:   "ok",
		},
		{
			name:   "empty stream",
			stream: new(streamBuilder).build(0),
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompress(tt.stream, Options{})
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Decompress = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecompressMalformedBackReference(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
	}{
		{"offset before start", new(streamBuilder).literal('a', 'b').backReference(3, 3, 2).build(10)},
		{"offset with empty history", new(streamBuilder).backReference(2, 1, 1).build(4)},
		{"offset zero", new(streamBuilder).literal('a').backReference(2, 0, 2).build(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompress(tt.stream, Options{ShortfallTolerance: 0.5})
			var malformed *MalformedStreamError
			if !errors.As(err, &malformed) {
				t.Fatalf("Decompress error = %v, want *MalformedStreamError", err)
			}
			if errors.Is(err, bitstream.ErrEndOfStream) {
				t.Errorf("bad back-reference should not be reported as end of stream: %v", err)
			}
			if got != nil {
				t.Errorf("Decompress returned %d bytes alongside an error", len(got))
			}
			if !strings.Contains(malformed.Reason, "back-reference offset") {
				t.Errorf("Reason = %q, want it to name the back-reference offset", malformed.Reason)
			}
		})
	}
}

func TestDecompressShortfall(t *testing.T) {
	// Five bytes of tokens for a declared size of 100.
	stream := new(streamBuilder).literal('a', 'b', 'c').literal('d', 'e').build(100)

	t.Run("strict by default", func(t *testing.T) {
		got, err := Decompress(stream, Options{})
		if !errors.Is(err, bitstream.ErrEndOfStream) {
			t.Fatalf("Decompress error = %v, want wrapped ErrEndOfStream", err)
		}
		var malformed *MalformedStreamError
		if !errors.As(err, &malformed) {
			t.Fatalf("error %T is not *MalformedStreamError", err)
		}
		if malformed.Produced != 5 || malformed.Declared != 100 {
			t.Errorf("Produced/Declared = %d/%d, want 5/100", malformed.Produced, malformed.Declared)
		}
		if got != nil {
			t.Errorf("partial output returned: %q", got)
		}
	})

	t.Run("tolerance too small", func(t *testing.T) {
		if _, err := Decompress(stream, Options{ShortfallTolerance: 0.5}); err == nil {
			t.Fatal("95% shortfall accepted under 50% tolerance")
		}
	})

	t.Run("tolerance covers the gap", func(t *testing.T) {
		got, err := Decompress(stream, Options{ShortfallTolerance: 0.96})
		if err != nil {
			t.Fatalf("Decompress: %v", err)
		}
		if string(got) != "abcde" {
			t.Errorf("Decompress = %q, want %q", got, "abcde")
		}
	})

	t.Run("tolerance out of range", func(t *testing.T) {
		if _, err := Decompress(stream, Options{ShortfallTolerance: 1}); err == nil {
			t.Fatal("tolerance of 1 accepted")
		}
	})
}

func TestDecompressTruncatedToken(t *testing.T) {
	full := new(streamBuilder).literal('a').backReference(12, 1, 200).build(201)
	truncated := full[:len(full)-2]
	_, err := Decompress(truncated, Options{})
	if !errors.Is(err, bitstream.ErrEndOfStream) {
		t.Fatalf("Decompress error = %v, want wrapped ErrEndOfStream", err)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	random := rand.New(rand.NewPCG(1, 2))
	noise := make([]byte, 20000)
	for i := range noise {
		noise[i] = byte(random.UintN(256))
	}
	var xml strings.Builder
	xml.WriteString(`<?xml version="1.0" encoding="utf-8"?><GPIF><Bars>`)
	for bar := range 400 {
		xml.WriteString(`<Bar id="`)
		xml.WriteString(strings.Repeat("1", bar%7+1))
		xml.WriteString(`"><Clef>G2</Clef><Voices>0 -1 -1 -1</Voices></Bar>`)
	}
	xml.WriteString(`</Bars></GPIF>`)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte{0x7F}},
		{"two bytes", []byte("ab")},
		{"short text", []byte("the quick brown fox")},
		{"run longer than max length", bytes.Repeat([]byte{0}, 3*maxLength+17)},
		{"period two", bytes.Repeat([]byte("ab"), 5000)},
		{"xml score", []byte(xml.String())},
		{"random noise", noise},
		{"repeated noise block", append(append([]byte{}, noise...), noise[:1000]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := Compress(tt.data)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			header, err := ParseHeader(compressed)
			if err != nil {
				t.Fatalf("ParseHeader on Compress output: %v", err)
			}
			if int(header.DecompressedSize) != len(tt.data) {
				t.Errorf("header size = %d, want %d", header.DecompressedSize, len(tt.data))
			}
			got, err := Decompress(compressed, Options{})
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestCompressShrinksRepetitiveInput(t *testing.T) {
	data := []byte(strings.Repeat("<Note><Rhythm ref=\"0\"/></Note>", 200))
	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= len(data)/10 {
		t.Errorf("compressed %d bytes to %d, want under a tenth", len(data), len(compressed))
	}
}
