// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Pack writes entries as a BCFS image: the reserved sector 0, then for
// each entry its entry sector followed by its data sectors. Entry names
// must be non-empty, unique, at most [MaxNameLength] bytes, and free of
// NUL bytes.
func Pack(entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, errors.New("bcfs: cannot pack an empty archive")
	}

	sectors := 1
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return nil, err
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("bcfs: duplicate entry name %q", entry.Name)
		}
		seen[entry.Name] = true
		sectors += 1 + dataSectors(len(entry.Content))
	}

	image := make([]byte, len(Magic)+sectors*SectorSize)
	copy(image, Magic)
	body := image[len(Magic):]

	next := 1
	for _, entry := range entries {
		header := body[next*SectorSize : (next+1)*SectorSize]
		next++

		binary.LittleEndian.PutUint32(header[typeOffset:], entryTypeFile)
		copy(header[nameOffset:nameOffset+MaxNameLength], entry.Name)
		binary.LittleEndian.PutUint32(header[sizeOffset:], uint32(len(entry.Content)))

		remaining := entry.Content
		for field := blocksOffset; len(remaining) > 0; field += 4 {
			binary.LittleEndian.PutUint32(header[field:], uint32(next))
			chunk := remaining[:min(len(remaining), SectorSize)]
			copy(body[next*SectorSize:], chunk)
			remaining = remaining[len(chunk):]
			next++
		}
	}
	return image, nil
}

func validateEntry(entry Entry) error {
	switch {
	case entry.Name == "":
		return errors.New("bcfs: entry name is empty")
	case len(entry.Name) > MaxNameLength:
		return fmt.Errorf("bcfs: entry name %q is %d bytes, limit %d", entry.Name, len(entry.Name), MaxNameLength)
	case strings.IndexByte(entry.Name, 0) >= 0:
		return fmt.Errorf("bcfs: entry name %q contains a NUL byte", entry.Name)
	case len(entry.Content) > MaxFileSize:
		return fmt.Errorf("bcfs: entry %q is %d bytes, limit %d", entry.Name, len(entry.Content), MaxFileSize)
	}
	return nil
}

func dataSectors(size int) int {
	return (size + SectorSize - 1) / SectorSize
}
