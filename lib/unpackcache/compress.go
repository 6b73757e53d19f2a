// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unpackcache

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/jamiemacari/guitarprotool/lib/xmlrepair"
)

// Codec identifies how a cached entry is compressed. Codecs are
// stored by name in manifests.
type Codec uint8

const (
	// CodecNone stores the entry as is. Used for small or already
	// compressed content (embedded audio, images).
	CodecNone Codec = iota

	// CodecLZ4 is LZ4 block compression, for binary entries that
	// compress modestly.
	CodecLZ4

	// CodecZstd is zstd at the default level, for XML and other text.
	CodecZstd
)

var codecNames = [...]string{
	CodecNone: "none",
	CodecLZ4:  "lz4",
	CodecZstd: "zstd",
}

func (c Codec) String() string {
	if int(c) < len(codecNames) {
		return codecNames[c]
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

func (c Codec) MarshalText() ([]byte, error) {
	if int(c) >= len(codecNames) {
		return nil, fmt.Errorf("unpackcache: unknown codec %d", uint8(c))
	}
	return []byte(codecNames[c]), nil
}

func (c *Codec) UnmarshalText(text []byte) error {
	parsed, err := ParseCodec(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCodec parses a codec name.
func ParseCodec(name string) (Codec, error) {
	for codec, known := range codecNames {
		if known == name {
			return Codec(codec), nil
		}
	}
	return 0, fmt.Errorf("unpackcache: unknown codec %q", name)
}

// zstdEncoder and zstdDecoder are safe for concurrent use and reused
// across calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("unpackcache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("unpackcache: zstd decoder initialization failed: " + err.Error())
	}
}

// minCompressible is the entry size below which compression is not
// attempted.
const minCompressible = 64

// SelectCompression picks the codec for an entry. XML entries always
// use zstd. Other entries are trial-compressed with zstd: a ratio of 1.5 or more
// selects zstd, 1.1 or more LZ4, anything less no compression.
func SelectCompression(name string, content []byte) Codec {
	if len(content) < minCompressible {
		return CodecNone
	}
	if xmlrepair.IsXML(name, content) {
		return CodecZstd
	}
	compressed := zstdEncoder.EncodeAll(content, nil)
	ratio := float64(len(content)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return CodecZstd
	case ratio >= 1.1:
		return CodecLZ4
	default:
		return CodecNone
	}
}

// errIncompressible is returned when compressed output is not smaller
// than the input. The caller stores the entry with CodecNone.
var errIncompressible = errors.New("unpackcache: data is incompressible")

// compressAuto compresses content with the selected codec, falling
// back to CodecNone when it does not shrink.
func compressAuto(name string, content []byte) ([]byte, Codec, error) {
	codec := SelectCompression(name, content)
	compressed, err := compress(content, codec)
	if errors.Is(err, errIncompressible) {
		return content, CodecNone, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return compressed, codec, nil
}

func compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil
	case CodecLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	case CodecZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil
	}
	return nil, fmt.Errorf("unpackcache: unsupported codec %d", uint8(codec))
}

// decompress reverses compress. size must be the exact uncompressed
// length.
func decompress(compressed []byte, codec Codec, size int) ([]byte, error) {
	switch codec {
	case CodecNone:
		if len(compressed) != size {
			return nil, fmt.Errorf("stored entry: size %d does not match expected %d", len(compressed), size)
		}
		return compressed, nil
	case CodecLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(compressed, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return destination, nil
	case CodecZstd:
		result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unpackcache: unsupported codec %d", uint8(codec))
}
