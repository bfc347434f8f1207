// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Teller's standard CBOR encoding configuration.
//
// Every byte Teller puts on the wire or into a durable artifact goes
// through this package: protocol request and response bodies, the
// canonical encoding hashed into transaction digests, and backup
// snapshots. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same logical value always produces the
// same bytes, which is what makes transaction digests reproducible.
//
// For buffer-oriented operations (protocol frames, digests):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (backup bodies):
//
//	encoder := codec.NewEncoder(writer)
//	decoder := codec.NewDecoder(reader)
//
// # Struct Tag Rules
//
// Types that only ever travel as CBOR carry `cbor` tags. Types the CLI
// also prints with --json carry `json` tags; fxamacker/cbor reads
// `json` tags when `cbor` tags are absent, so one tag controls both
// formats. Never put both tags on the same field.
package codec
