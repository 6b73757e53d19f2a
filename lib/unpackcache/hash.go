// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unpackcache

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/zeebo/blake3"
)

// Key is a 32-byte BLAKE3 digest addressing one cached container.
type Key [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. The byte values
// are the ASCII domain name, zero-padded. Changing either key
// invalidates every existing cache file.
type domainKey [32]byte

var (
	containerDomain = domainKey{
		'g', 'u', 'i', 't', 'a', 'r', 'p', 'r', 'o', 't', 'o', 'o', 'l', '.',
		'u', 'n', 'p', 'a', 'c', 'k', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	lenientDomain = domainKey{
		'g', 'u', 'i', 't', 'a', 'r', 'p', 'r', 'o', 't', 'o', 'o', 'l', '.',
		'u', 'n', 'p', 'a', 'c', 'k', '.', 'l', 'e', 'n', 'i', 'e', 'n', 't', 0, 0, 0, 0,
	}

	entryDomain = domainKey{
		'g', 'u', 'i', 't', 'a', 'r', 'p', 'r', 'o', 't', 'o', 'o', 'l', '.',
		'u', 'n', 'p', 'a', 'c', 'k', '.', 'e', 'n', 't', 'r', 'y', 0, 0, 0, 0, 0, 0,
	}
)

// KeyOf returns the cache key of a compressed container file decoded
// strictly.
func KeyOf(data []byte) Key {
	return Key(keyedHash(containerDomain, data))
}

// KeyWithTolerance returns the cache key of a compressed container file
// decoded with the given shortfall tolerance. A zero tolerance gives
// [KeyOf]. Each tolerance has its own key, so entries decoded leniently
// are never served to a stricter decode.
func KeyWithTolerance(data []byte, shortfallTolerance float64) Key {
	if shortfallTolerance == 0 {
		return KeyOf(data)
	}
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], math.Float64bits(shortfallTolerance))
	return Key(keyedHash(lenientDomain, prefix[:], data))
}

// entryDigest hashes uncompressed entry content for verification.
func entryDigest(content []byte) [32]byte {
	return keyedHash(entryDomain, content)
}

func keyedHash(key domainKey, parts ...[]byte) [32]byte {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("unpackcache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	for _, part := range parts {
		hasher.Write(part)
	}
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// String returns the 64-character hex form of k.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// ParseKey parses the hex form produced by [Key.String].
func ParseKey(text string) (Key, error) {
	var key Key
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return key, fmt.Errorf("parsing cache key: %w", err)
	}
	if len(decoded) != len(key) {
		return key, fmt.Errorf("cache key is %d bytes, want %d", len(decoded), len(key))
	}
	copy(key[:], decoded)
	return key, nil
}
