// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Enumerations (severity, correction kind, matching mode) implement
	// encoding.TextMarshaler and are written as their names.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// any-typed targets decode to map[string]any rather than
		// map[interface{}]interface{}, so Inspect output can be
		// re-encoded as JSON.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Unknown fields are ignored.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// Envelope wraps a versioned artifact. Kind names the payload type so
// a plan file handed to the cache reader (or the reverse) fails with a
// clear message instead of decoding into zero values.
type Envelope struct {
	Kind    string          `cbor:"kind"`
	Version int             `cbor:"version"`
	Payload cbor.RawMessage `cbor:"payload"`
}

// ErrKindMismatch is returned by [Open] when the envelope holds a
// different kind of artifact.
var ErrKindMismatch = errors.New("codec: artifact kind mismatch")

// UnsupportedVersionError is returned by [Open] for an envelope
// written by a newer (or unknown) format version.
type UnsupportedVersionError struct {
	Kind    string
	Version int
	Max     int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("codec: %s version %d is not supported (newest known is %d)", e.Kind, e.Version, e.Max)
}

// Seal encodes payload and wraps it in an [Envelope].
func Seal(kind string, version int, payload any) ([]byte, error) {
	body, err := Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding %s payload: %w", kind, err)
	}
	return Marshal(Envelope{Kind: kind, Version: version, Payload: body})
}

// Open decodes an [Envelope] of the given kind into payload and
// returns its version. Versions from 1 through maxVersion are
// accepted.
func Open(data []byte, kind string, maxVersion int, payload any) (int, error) {
	var envelope Envelope
	if err := Unmarshal(data, &envelope); err != nil {
		return 0, fmt.Errorf("codec: decoding %s envelope: %w", kind, err)
	}
	if envelope.Kind != kind {
		return 0, fmt.Errorf("%w: want %q, got %q", ErrKindMismatch, kind, envelope.Kind)
	}
	if envelope.Version < 1 || envelope.Version > maxVersion {
		return 0, &UnsupportedVersionError{Kind: kind, Version: envelope.Version, Max: maxVersion}
	}
	if err := Unmarshal(envelope.Payload, payload); err != nil {
		return 0, fmt.Errorf("codec: decoding %s payload: %w", kind, err)
	}
	return envelope.Version, nil
}
