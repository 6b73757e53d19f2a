// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unpackcache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jamiemacari/guitarprotool/lib/bcfs"
	"github.com/jamiemacari/guitarprotool/lib/codec"
)

const (
	manifestKind    = "guitarprotool.unpack-manifest"
	manifestVersion = 1
)

// manifest is the CBOR content of one cache file.
type manifest struct {
	Entries []manifestEntry `cbor:"entries"`
}

type manifestEntry struct {
	Name   string   `cbor:"name"`
	Codec  Codec    `cbor:"codec"`
	Size   int      `cbor:"size"`
	Digest [32]byte `cbor:"digest"`
	Data   []byte   `cbor:"data"`
}

// Options configures [Open].
type Options struct {
	Logger *slog.Logger
}

// Cache is an on-disk unpack cache rooted at one directory. Methods are
// safe for concurrent use by multiple goroutines and processes: every
// write is a rename of a fully written temp file.
type Cache struct {
	directory string
	logger    *slog.Logger
}

// Open creates directory if needed and returns a Cache rooted there.
func Open(directory string, options Options) (*Cache, error) {
	if directory == "" {
		return nil, errors.New("unpackcache: directory is required")
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("unpackcache: creating %s: %w", directory, err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{directory: directory, logger: logger}, nil
}

// Directory returns the cache root.
func (c *Cache) Directory() string { return c.directory }

// Key returns the cache key of a compressed container file.
func (c *Cache) Key(data []byte, shortfallTolerance float64) Key {
	return KeyWithTolerance(data, shortfallTolerance)
}

func (c *Cache) path(key Key) string {
	name := key.String()
	return filepath.Join(c.directory, name[:2], name+".cbor")
}

// Get returns the cached entries for key. A missing file is a miss
// (found false, nil error). A file that cannot be decoded or fails
// verification is removed and reported as a miss; only I/O errors
// other than not-exist are returned.
func (c *Cache) Get(key Key) (entries []bcfs.Entry, found bool, err error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unpackcache: reading %s: %w", path, err)
	}

	entries, err = decodeManifest(data)
	if err != nil {
		c.logger.Warn("discarding unreadable cache file",
			"key", key.String(),
			"error", err,
		)
		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("unpackcache: removing %s: %w", path, removeErr)
		}
		return nil, false, nil
	}
	c.logger.Debug("unpack cache hit", "key", key.String(), "entries", len(entries))
	return entries, true, nil
}

func decodeManifest(data []byte) ([]bcfs.Entry, error) {
	var stored manifest
	if _, err := codec.Open(data, manifestKind, manifestVersion, &stored); err != nil {
		return nil, err
	}
	entries := make([]bcfs.Entry, len(stored.Entries))
	for i, record := range stored.Entries {
		if record.Size < 0 {
			return nil, fmt.Errorf("entry %q: negative size %d", record.Name, record.Size)
		}
		content, err := decompress(record.Data, record.Codec, record.Size)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", record.Name, err)
		}
		if entryDigest(content) != record.Digest {
			return nil, fmt.Errorf("entry %q: content digest mismatch", record.Name)
		}
		entries[i] = bcfs.Entry{Name: record.Name, Content: content}
	}
	return entries, nil
}

// Put stores entries under key, replacing any existing file.
func (c *Cache) Put(key Key, entries []bcfs.Entry) error {
	stored := manifest{Entries: make([]manifestEntry, len(entries))}
	storedBytes, rawBytes := 0, 0
	for i, entry := range entries {
		data, used, err := compressAuto(entry.Name, entry.Content)
		if err != nil {
			return fmt.Errorf("unpackcache: compressing %q: %w", entry.Name, err)
		}
		stored.Entries[i] = manifestEntry{
			Name:   entry.Name,
			Codec:  used,
			Size:   len(entry.Content),
			Digest: entryDigest(entry.Content),
			Data:   data,
		}
		storedBytes += len(data)
		rawBytes += len(entry.Content)
	}

	data, err := codec.Seal(manifestKind, manifestVersion, stored)
	if err != nil {
		return fmt.Errorf("unpackcache: %w", err)
	}
	if err := c.writeAtomic(c.path(key), data); err != nil {
		return err
	}
	c.logger.Debug("unpack cache store",
		"key", key.String(),
		"entries", len(entries),
		"raw_bytes", rawBytes,
		"stored_bytes", storedBytes,
	)
	return nil
}

func (c *Cache) writeAtomic(finalPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("unpackcache: creating shard directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(finalPath), "put-*.tmp")
	if err != nil {
		return fmt.Errorf("unpackcache: creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("unpackcache: writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("unpackcache: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("unpackcache: renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Remove deletes the file for key. Removing a key that is not cached
// is not an error.
func (c *Cache) Remove(key Key) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unpackcache: removing %s: %w", key, err)
	}
	return nil
}
