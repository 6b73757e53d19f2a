// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// Two serialization formats are in use:
//
//   - JSON for anything a person or another tool reads: CLI --json
//     output and beat files.
//   - CBOR for the artifacts this tool writes for itself or hands to
//     the next stage: sync-plan documents and unpack cache manifests.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same plan always produces identical bytes, so plan files can be
// compared with cmp and cache manifests are stable across runs.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type is only ever written as CBOR (cache
//     manifests).
//   - `json` tag: the type is written as both JSON and CBOR. The CBOR
//     library falls back to json tags when cbor tags are absent, so one
//     tag controls both encodings (drift reports, sync plans).
//
// Never put both tags on the same field.
package codec
