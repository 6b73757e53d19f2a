// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfz

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jamiemacari/guitarprotool/lib/bitstream"
)

// maxPreallocate bounds the up-front output allocation so a forged
// header cannot request gigabytes before a single token is decoded.
const maxPreallocate = 16 << 20

// Options tunes [Decompress].
type Options struct {
	// ShortfallTolerance is the fraction of the declared size that may
	// be missing when the token stream runs out. Zero (the default)
	// requires the declared size to be reached exactly. Some writers
	// emit streams that stop a few bytes short; 0.01 accepts those.
	ShortfallTolerance float64

	// Logger receives a warning when a short stream is accepted under
	// ShortfallTolerance. Nil discards.
	Logger *slog.Logger
}

// MalformedStreamError reports a BCFZ stream that cannot be decoded.
type MalformedStreamError struct {
	// Offset is the byte position in the input (header included) at
	// which decoding stopped.
	Offset int

	// Produced and Declared are the output length reached and the
	// length the header promised.
	Produced int
	Declared int

	Reason string

	// Err is the underlying cause, if any: [ErrBadMagic] or
	// [bitstream.ErrEndOfStream].
	Err error
}

func (e *MalformedStreamError) Error() string {
	message := fmt.Sprintf("bcfz: malformed stream at byte %d: %s", e.Offset, e.Reason)
	if e.Declared > 0 {
		message += fmt.Sprintf(" (%d of %d bytes decoded)", e.Produced, e.Declared)
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *MalformedStreamError) Unwrap() error { return e.Err }

// Decompress decodes a complete BCFZ stream, header included, and
// returns exactly Header.DecompressedSize bytes. On failure it returns
// a [*MalformedStreamError] and no output.
func Decompress(data []byte, options Options) ([]byte, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if options.ShortfallTolerance < 0 || options.ShortfallTolerance >= 1 {
		return nil, fmt.Errorf("bcfz: shortfall tolerance %v outside [0, 1)", options.ShortfallTolerance)
	}

	decoder := decoder{
		reader:   bitstream.NewReader(data[HeaderSize:]),
		declared: int(header.DecompressedSize),
	}
	decoder.output = make([]byte, 0, min(decoder.declared, maxPreallocate))

	if err := decoder.run(); err != nil {
		if !errors.Is(err, bitstream.ErrEndOfStream) || !decoder.withinTolerance(options.ShortfallTolerance) {
			return nil, err
		}
		logger := options.Logger
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		logger.Warn("bcfz stream ended before declared size",
			"produced", len(decoder.output),
			"declared", decoder.declared,
		)
	}
	return decoder.output, nil
}

type decoder struct {
	reader   *bitstream.Reader
	declared int
	output   []byte
}

func (d *decoder) run() error {
	for len(d.output) < d.declared {
		flag, err := d.reader.ReadBit()
		if err != nil {
			return d.fail("reading token flag", err)
		}
		if flag == 1 {
			err = d.backReference()
		} else {
			err = d.literal()
		}
		if err != nil {
			return err
		}
	}
	// A literal run may overshoot the declared size by up to two bytes.
	d.output = d.output[:d.declared]
	return nil
}

func (d *decoder) literal() error {
	count, err := d.reader.ReadBitsReversed(2)
	if err != nil {
		return d.fail("reading literal count", err)
	}
	for range count {
		value, err := d.reader.ReadBits(8)
		if err != nil {
			return d.fail("reading literal byte", err)
		}
		d.output = append(d.output, byte(value))
	}
	return nil
}

func (d *decoder) backReference() error {
	width, err := d.reader.ReadBits(4)
	if err != nil {
		return d.fail("reading back-reference width", err)
	}
	if width == 0 {
		return nil
	}
	offset, err := d.reader.ReadBitsReversed(uint(width))
	if err != nil {
		return d.fail("reading back-reference offset", err)
	}
	length, err := d.reader.ReadBitsReversed(uint(width))
	if err != nil {
		return d.fail("reading back-reference length", err)
	}
	if length == 0 {
		return nil
	}
	if offset == 0 || offset > uint64(len(d.output)) {
		return d.fail(fmt.Sprintf("back-reference offset %d with %d bytes of history", offset, len(d.output)), nil)
	}

	start := len(d.output) - int(offset)
	count := min(int(length), d.declared-len(d.output))
	// Byte at a time: when offset < length the source range overlaps
	// bytes appended by this same copy.
	for i := range count {
		d.output = append(d.output, d.output[start+i])
	}
	return nil
}

func (d *decoder) fail(reason string, cause error) error {
	return &MalformedStreamError{
		Offset:   HeaderSize + d.reader.Offset(),
		Produced: len(d.output),
		Declared: d.declared,
		Reason:   reason,
		Err:      cause,
	}
}

func (d *decoder) withinTolerance(tolerance float64) bool {
	missing := d.declared - len(d.output)
	return missing > 0 && float64(missing) <= tolerance*float64(d.declared)
}
