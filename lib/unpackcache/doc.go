// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package unpackcache is a content-addressed on-disk cache of unpacked
// GPX containers.
//
// Decompressing a large BCFZ file bit by bit is the slowest step of
// opening a score. The cache keys each container by the BLAKE3 keyed
// hash (domain "guitarprotool.unpack") of the compressed file bytes and
// stores the unpacked entries, so a second open of the same file skips
// decompression entirely. Entries are cached before the XML repair
// pass: repairs are cheap, and caching raw content keeps one cache
// valid across repair settings.
//
// Each cached container is one file:
//
//	<dir>/<first two hex digits>/<64 hex digits>.cbor
//
// holding a CBOR manifest (see lib/codec) with one record per entry.
// Every entry is compressed with the codec [SelectCompression] picks:
// zstd for XML and other text, LZ4 for moderately compressible binary
// data, none for data that does not shrink. Each record carries the
// BLAKE3 hash of its uncompressed content; an entry that fails
// verification turns the whole file into a miss and the file is
// removed.
//
// Writes are atomic (temp file + rename), so concurrent processes
// sharing a cache directory never observe a partial file.
package unpackcache
