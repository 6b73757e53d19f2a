// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic is the four-byte signature at the start of a BCFS image.
const Magic = "BCFS"

// SectorSize is the fixed size of every sector in the image.
const SectorSize = 4096

const (
	entryTypeDirectory = 1
	entryTypeFile      = 2
)

// Field offsets within an entry sector.
const (
	typeOffset    = 0x00
	nameOffset    = 0x04
	nameFieldSize = 0x80
	sizeOffset    = 0x8C
	blocksOffset  = 0x94
)

// MaxNameLength is the longest entry name the name field can hold
// alongside its NUL terminator.
const MaxNameLength = nameFieldSize - 1

// maxBlocks is the number of data sector indices that fit in an entry
// sector after the terminator is reserved.
const maxBlocks = (SectorSize-blocksOffset)/4 - 1

// MaxFileSize is the largest file a single entry sector can describe.
const MaxFileSize = maxBlocks * SectorSize

// MalformedContainerError reports a BCFS image whose entry index is
// inconsistent with its contents.
type MalformedContainerError struct {
	// Offset is the byte position in the image (magic included) of the
	// field that failed validation.
	Offset int
	Reason string
}

func (e *MalformedContainerError) Error() string {
	return fmt.Sprintf("bcfs: malformed container at byte %d: %s", e.Offset, e.Reason)
}

// Entry is one file in the container.
type Entry struct {
	Name    string
	Content []byte
}

// Archive is the ordered set of files in a BCFS image. Entries appear
// in the order of their entry sectors.
type Archive struct {
	Entries []Entry
}

// Lookup returns the entry with the given name.
func (a *Archive) Lookup(name string) (Entry, bool) {
	for _, entry := range a.Entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// Names returns the entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.Entries))
	for i, entry := range a.Entries {
		names[i] = entry.Name
	}
	return names
}

// Files returns the archive as a name to content map. The content
// slices are shared with the archive.
func (a *Archive) Files() map[string][]byte {
	files := make(map[string][]byte, len(a.Entries))
	for _, entry := range a.Entries {
		files[entry.Name] = entry.Content
	}
	return files
}

// Unpack parses a BCFS image. The returned entries own their content;
// image may be reused afterwards.
func Unpack(image []byte) (*Archive, error) {
	if !bytes.HasPrefix(image, []byte(Magic)) {
		prefix := image[:min(len(image), len(Magic))]
		return nil, &MalformedContainerError{Offset: 0, Reason: fmt.Sprintf("image starts with %q, want %q", prefix, Magic)}
	}

	parser := parser{
		body:    image[len(Magic):],
		claimed: make(map[int]bool),
		seen:    make(map[string]int),
	}
	parser.sectorCount = (len(parser.body) + SectorSize - 1) / SectorSize

	archive := &Archive{}
	for sector := 1; sector < parser.sectorCount; sector++ {
		if parser.claimed[sector] {
			continue
		}
		entry, ok, err := parser.entry(sector)
		if err != nil {
			return nil, err
		}
		if ok {
			archive.Entries = append(archive.Entries, entry)
		}
	}
	if len(archive.Entries) == 0 {
		return nil, &MalformedContainerError{Offset: len(image), Reason: "no file entries"}
	}
	return archive, nil
}

type parser struct {
	body        []byte
	sectorCount int
	// claimed marks data sectors already owned by a file so they are
	// not scanned as entry sectors.
	claimed map[int]bool
	// seen maps entry names to the sector that declared them.
	seen map[string]int
}

// entry parses the sector at index as an entry. ok is false for
// sectors that are not file entries.
func (p *parser) entry(index int) (Entry, bool, error) {
	start := index * SectorSize
	sector := p.body[start:min(start+SectorSize, len(p.body))]
	if len(sector) < blocksOffset+4 {
		return Entry{}, false, nil
	}
	if p.int32(sector, typeOffset) != entryTypeFile {
		return Entry{}, false, nil
	}

	nameField := sector[nameOffset : nameOffset+nameFieldSize]
	end := bytes.IndexByte(nameField, 0)
	if end < 0 {
		return Entry{}, false, p.malformed(start+nameOffset, fmt.Sprintf("sector %d: entry name is not NUL-terminated", index))
	}
	if end == 0 {
		return Entry{}, false, p.malformed(start+nameOffset, fmt.Sprintf("sector %d: file entry has an empty name", index))
	}
	name := string(nameField[:end])
	if previous, duplicate := p.seen[name]; duplicate {
		return Entry{}, false, p.malformed(start+nameOffset, fmt.Sprintf("sector %d: duplicate entry name %q (first declared in sector %d)", index, name, previous))
	}

	size := p.int32(sector, sizeOffset)
	if size < 0 {
		return Entry{}, false, p.malformed(start+sizeOffset, fmt.Sprintf("sector %d: negative file size %d", index, size))
	}

	content := make([]byte, 0, min(int(size), MaxFileSize))
	for field := blocksOffset; field+4 <= len(sector) && len(content) < int(size); field += 4 {
		block := int(p.int32(sector, field))
		if block == 0 {
			break
		}
		if block < 1 || block >= p.sectorCount {
			return Entry{}, false, p.malformed(start+field, fmt.Sprintf("sector %d: %q data sector %d outside image of %d sectors", index, name, block, p.sectorCount))
		}
		if block == index {
			return Entry{}, false, p.malformed(start+field, fmt.Sprintf("sector %d: %q lists its own entry sector as data", index, name))
		}
		p.claimed[block] = true
		blockStart := block * SectorSize
		content = append(content, p.body[blockStart:min(blockStart+SectorSize, len(p.body))]...)
	}
	if len(content) < int(size) {
		return Entry{}, false, p.malformed(start+sizeOffset, fmt.Sprintf("sector %d: %q declares %d bytes but its sectors hold %d", index, name, size, len(content)))
	}

	p.seen[name] = index
	return Entry{Name: name, Content: content[:size]}, true, nil
}

func (p *parser) int32(sector []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(sector[offset : offset+4]))
}

// malformed converts a body offset to an image offset.
func (p *parser) malformed(bodyOffset int, reason string) error {
	return &MalformedContainerError{Offset: len(Magic) + bodyOffset, Reason: reason}
}
