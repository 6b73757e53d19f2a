// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncplan

import (
	"fmt"

	"github.com/jamiemacari/guitarprotool/lib/codec"
	"github.com/jamiemacari/guitarprotool/lib/drift"
	"github.com/jamiemacari/guitarprotool/lib/tempo"
)

const (
	// DocumentKind identifies a sync plan inside a codec envelope.
	DocumentKind = "guitarprotool.sync-plan"

	// DocumentVersion is the version written by [EncodeDocument].
	DocumentVersion = 1
)

// Document is the stored form of a [Plan], handed to whatever writes
// the sync points into the score.
type Document struct {
	Timeline drift.Timeline `json:"timeline"`

	SampleRate        int     `json:"sample_rate"`
	OriginSeconds     float64 `json:"origin_seconds"`
	InitialTimeOffset int64   `json:"initial_time_offset"`

	Correction tempo.Correction `json:"correction"`
	Points     []SyncPoint      `json:"points"`

	Report *drift.Report `json:"report,omitempty"`
}

// Document returns the stored form of p.
func (p *Plan) Document() Document {
	document := Document{
		SampleRate:        p.Origin.SampleRate(),
		OriginSeconds:     p.Origin.Seconds(),
		InitialTimeOffset: p.InitialTimeOffset,
		Correction:        p.Correction,
		Points:            p.Points,
		Report:            p.Report,
	}
	if p.Report != nil {
		document.Timeline = p.Report.Timeline
	}
	return document
}

// Origin rebuilds the plan's [TimeOrigin].
func (d Document) Origin() TimeOrigin {
	return NewTimeOrigin(d.OriginSeconds, d.SampleRate)
}

// EncodeDocument writes d as a versioned CBOR envelope.
func EncodeDocument(d Document) ([]byte, error) {
	return codec.Seal(DocumentKind, DocumentVersion, d)
}

// DecodeDocument reads a document written by [EncodeDocument] and
// checks that its initial time offset agrees with its origin.
func DecodeDocument(data []byte) (Document, error) {
	var document Document
	if _, err := codec.Open(data, DocumentKind, DocumentVersion, &document); err != nil {
		return Document{}, fmt.Errorf("syncplan: %w", err)
	}
	if document.SampleRate <= 0 {
		return Document{}, fmt.Errorf("syncplan: document sample rate %d must be positive", document.SampleRate)
	}
	if want := document.Origin().InitialTimeOffset(); document.InitialTimeOffset != want {
		return Document{}, fmt.Errorf("syncplan: document initial time offset %d does not match its origin (want %d)",
			document.InitialTimeOffset, want)
	}
	return document, nil
}
