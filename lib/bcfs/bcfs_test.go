// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bcfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"strings"
	"testing"
)

// entrySector builds a raw entry sector.
func entrySector(kind int32, name string, size int32, blocks ...int32) []byte {
	sector := make([]byte, SectorSize)
	binary.LittleEndian.PutUint32(sector[typeOffset:], uint32(kind))
	copy(sector[nameOffset:], name)
	binary.LittleEndian.PutUint32(sector[sizeOffset:], uint32(size))
	for i, block := range blocks {
		binary.LittleEndian.PutUint32(sector[blocksOffset+4*i:], uint32(block))
	}
	return sector
}

// dataSector builds a sector filled with content, zero padded.
func dataSector(content string) []byte {
	sector := make([]byte, SectorSize)
	copy(sector, content)
	return sector
}

// buildImage lays out the magic, a reserved sector 0, and sectors
// 1..n in order.
func buildImage(sectors ...[]byte) []byte {
	image := append([]byte(Magic), make([]byte, SectorSize)...)
	for _, sector := range sectors {
		image = append(image, sector...)
	}
	return image
}

func TestUnpackLayout(t *testing.T) {
	image := buildImage(
		entrySector(entryTypeDirectory, "Content", 0),
		entrySector(entryTypeFile, "score.gpif", 11, 3),
		dataSector("<GPIF></GPIF>"),
		entrySector(entryTypeFile, "misc.xml", 5, 5),
		dataSector("hello world"),
	)

	archive, err := Unpack(image)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got, want := archive.Names(), []string{"score.gpif", "misc.xml"}; !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	score, ok := archive.Lookup("score.gpif")
	if !ok {
		t.Fatal("Lookup(score.gpif) missing")
	}
	if string(score.Content) != "<GPIF></GPI" {
		t.Errorf("score content = %q, want truncation to 11 bytes", score.Content)
	}
	if string(archive.Files()["misc.xml"]) != "hello" {
		t.Errorf("misc.xml = %q, want %q", archive.Files()["misc.xml"], "hello")
	}
	if _, ok := archive.Lookup("Content"); ok {
		t.Error("directory entry should not appear as a file")
	}
}

func TestUnpackMultiSectorFile(t *testing.T) {
	first := strings.Repeat("a", SectorSize)
	image := buildImage(
		entrySector(entryTypeFile, "big.bin", SectorSize+3, 3, 2),
		// Sectors listed out of order: 3 is read before 2.
		dataSector("xyz"),
		dataSector(first),
	)
	archive, err := Unpack(image)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	entry, _ := archive.Lookup("big.bin")
	if want := first + "xyz"; string(entry.Content) != want {
		t.Errorf("content length %d, want %d (sector order not honoured)", len(entry.Content), len(want))
	}
}

func TestUnpackSkipsClaimedDataSectors(t *testing.T) {
	// The data sector happens to start with the file entry type.
	payload := entrySector(entryTypeFile, "looks-like-entry", 0)
	image := buildImage(
		entrySector(entryTypeFile, "payload.bin", SectorSize, 2),
		payload,
	)
	archive, err := Unpack(image)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got := archive.Names(); !slices.Equal(got, []string{"payload.bin"}) {
		t.Errorf("Names() = %v, want only payload.bin", got)
	}
}

func TestUnpackMalformed(t *testing.T) {
	tests := []struct {
		name   string
		image  []byte
		reason string
	}{
		{
			name:   "bad magic",
			image:  append([]byte("BCFZ"), make([]byte, SectorSize)...),
			reason: "image starts with",
		},
		{
			name:   "no entries",
			image:  buildImage(dataSector("")),
			reason: "no file entries",
		},
		{
			name:   "sector outside image",
			image:  buildImage(entrySector(entryTypeFile, "score.gpif", 10, 9)),
			reason: "outside image",
		},
		{
			name:   "negative sector",
			image:  buildImage(entrySector(entryTypeFile, "score.gpif", 10, -4)),
			reason: "outside image",
		},
		{
			name:   "size exceeds sectors",
			image:  buildImage(entrySector(entryTypeFile, "score.gpif", SectorSize+1, 2), dataSector("x")),
			reason: "declares",
		},
		{
			name:   "size with no sectors",
			image:  buildImage(entrySector(entryTypeFile, "score.gpif", 1)),
			reason: "declares",
		},
		{
			name:   "negative size",
			image:  buildImage(entrySector(entryTypeFile, "score.gpif", -1)),
			reason: "negative file size",
		},
		{
			name:   "empty name",
			image:  buildImage(entrySector(entryTypeFile, "", 0)),
			reason: "empty name",
		},
		{
			name:   "unterminated name",
			image:  buildImage(entrySector(entryTypeFile, strings.Repeat("n", nameFieldSize), 0)),
			reason: "not NUL-terminated",
		},
		{
			name: "duplicate name",
			image: buildImage(
				entrySector(entryTypeFile, "score.gpif", 0),
				entrySector(entryTypeFile, "score.gpif", 0),
			),
			reason: "duplicate entry name",
		},
		{
			name:   "self reference",
			image:  buildImage(entrySector(entryTypeFile, "loop", 4, 1)),
			reason: "own entry sector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive, err := Unpack(tt.image)
			var malformed *MalformedContainerError
			if !errors.As(err, &malformed) {
				t.Fatalf("Unpack error = %v, want *MalformedContainerError", err)
			}
			if archive != nil {
				t.Error("archive returned alongside error")
			}
			if !strings.Contains(malformed.Reason, tt.reason) {
				t.Errorf("Reason = %q, want it to contain %q", malformed.Reason, tt.reason)
			}
			if malformed.Offset < 0 || malformed.Offset > len(tt.image) {
				t.Errorf("Offset %d outside image of %d bytes", malformed.Offset, len(tt.image))
			}
		})
	}
}

func TestUnpackMalformedOffsetPointsAtField(t *testing.T) {
	image := buildImage(
		entrySector(entryTypeFile, "score.gpif", SectorSize+10, 2, 77),
		dataSector("first"),
	)
	_, err := Unpack(image)
	var malformed *MalformedContainerError
	if !errors.As(err, &malformed) {
		t.Fatalf("Unpack error = %v, want *MalformedContainerError", err)
	}
	// Sector 1 starts after the magic and sector 0; the second block
	// index is 4 bytes past the first.
	want := len(Magic) + SectorSize + blocksOffset + 4
	if malformed.Offset != want {
		t.Errorf("Offset = %d, want %d", malformed.Offset, want)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "score.gpif", Content: []byte(strings.Repeat("<Bar/>", 2000))},
		{Name: "misc.xml", Content: []byte("<misc/>")},
		{Name: "empty.bin", Content: nil},
		{Name: "exact", Content: bytes.Repeat([]byte{0xAB}, 2*SectorSize)},
	}

	image, err := Pack(entries)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if !bytes.HasPrefix(image, []byte(Magic)) {
		t.Fatal("image missing magic")
	}
	if (len(image)-len(Magic))%SectorSize != 0 {
		t.Errorf("image body %d bytes is not a whole number of sectors", len(image)-len(Magic))
	}

	archive, err := Unpack(image)
	if err != nil {
		t.Fatalf("Unpack(Pack(...)): %v", err)
	}
	if len(archive.Entries) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(archive.Entries), len(entries))
	}
	for i, want := range entries {
		got := archive.Entries[i]
		if got.Name != want.Name {
			t.Errorf("entry %d name = %q, want %q", i, got.Name, want.Name)
		}
		if !bytes.Equal(got.Content, want.Content) {
			t.Errorf("entry %q content mismatch: %d bytes, want %d", want.Name, len(got.Content), len(want.Content))
		}
	}
}

func TestPackRejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"no entries", nil},
		{"empty name", []Entry{{Name: ""}}},
		{"long name", []Entry{{Name: strings.Repeat("x", MaxNameLength+1)}}},
		{"nul in name", []Entry{{Name: "a\x00b"}}},
		{"duplicate", []Entry{{Name: "a"}, {Name: "a"}}},
		{"too large", []Entry{{Name: "huge", Content: make([]byte, MaxFileSize+1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Pack(tt.entries); err == nil {
				t.Error("Pack should fail")
			}
		})
	}
}

func TestPackAcceptsMaximumName(t *testing.T) {
	name := strings.Repeat("n", MaxNameLength)
	image, err := Pack([]Entry{{Name: name, Content: []byte("x")}})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	archive, err := Unpack(image)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if archive.Entries[0].Name != name {
		t.Errorf("name round trip lost bytes: %d, want %d", len(archive.Entries[0].Name), len(name))
	}
}
