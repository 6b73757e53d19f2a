// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// manifestEntry uses cbor tags (the convention for CBOR-only types).
type manifestEntry struct {
	Name  string `cbor:"name"`
	Codec string `cbor:"codec,omitempty"`
	Size  int    `cbor:"size"`
}

// syncPoint uses json tags (the convention for types written as both
// JSON and CBOR).
type syncPoint struct {
	Bar         int   `json:"bar"`
	FrameOffset int64 `json:"frame_offset"`
}

// level is a TextMarshaler enumeration.
type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("level-%d", int(l))), nil
}

func (l *level) UnmarshalText(text []byte) error {
	_, err := fmt.Sscanf(string(text), "level-%d", (*int)(l))
	return err
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := manifestEntry{Name: "Content/score.gpif", Codec: "zstd", Size: 48213}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded manifestEntry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	data, err := Marshal(syncPoint{Bar: 8, FrameOffset: 705600})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"frame_offset"`) {
		t.Errorf("notation %q does not use the json tag name", notation)
	}
}

func TestTextMarshalerEncodesAsString(t *testing.T) {
	type holder struct {
		Level level `cbor:"level"`
	}
	data, err := Marshal(holder{Level: 3})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"level-3"`) {
		t.Errorf("notation %q, want the text form", notation)
	}
	var decoded holder
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Level != 3 {
		t.Errorf("decoded level %d, want 3", decoded.Level)
	}
}

func TestAnyDecodesToStringMap(t *testing.T) {
	data, err := Marshal(map[string]any{"bars": []int{0, 8}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Errorf("decoded %T, want map[string]any", decoded)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var entry manifestEntry
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &entry); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestEnvelope(t *testing.T) {
	points := []syncPoint{{Bar: 0}, {Bar: 8, FrameOffset: 705600}}
	data, err := Seal("sync-plan", 1, points)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	t.Run("open", func(t *testing.T) {
		var decoded []syncPoint
		version, err := Open(data, "sync-plan", 1, &decoded)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if version != 1 || len(decoded) != 2 || decoded[1] != points[1] {
			t.Errorf("Open = version %d, %+v", version, decoded)
		}
	})

	t.Run("wrong kind", func(t *testing.T) {
		var decoded []syncPoint
		_, err := Open(data, "unpack-manifest", 1, &decoded)
		if !errors.Is(err, ErrKindMismatch) {
			t.Errorf("Open error = %v, want ErrKindMismatch", err)
		}
	})

	t.Run("newer version", func(t *testing.T) {
		newer, err := Seal("sync-plan", 2, points)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		var decoded []syncPoint
		_, err = Open(newer, "sync-plan", 1, &decoded)
		var unsupported *UnsupportedVersionError
		if !errors.As(err, &unsupported) || unsupported.Version != 2 {
			t.Errorf("Open error = %v, want *UnsupportedVersionError for version 2", err)
		}
	})

	t.Run("not an envelope", func(t *testing.T) {
		var decoded []syncPoint
		if _, err := Open([]byte("plain text"), "sync-plan", 1, &decoded); err == nil {
			t.Error("Open accepted non-CBOR input")
		}
	})
}

func BenchmarkMarshal(b *testing.B) {
	points := make([]syncPoint, 64)
	for i := range points {
		points[i] = syncPoint{Bar: i * 8, FrameOffset: int64(i) * 705600}
	}
	b.ReportAllocs()
	for b.Loop() {
		Marshal(points)
	}
}
