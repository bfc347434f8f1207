// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backup reads and writes ledger backup archives.
//
// An archive is a fixed header followed by one compressed CBOR
// [ledger.Snapshot]:
//
//	magic        8 bytes  "TELLERBK"
//	version      1 byte
//	compression  1 byte   none, lz4 or zstd
//	size         8 bytes  uncompressed length, big-endian
//	digest      32 bytes  blake3 of the uncompressed snapshot
//	body                  compressed snapshot
//
// When recipients are given the whole archive is wrapped in an age
// stream. [Read] detects the age header and requires an identity.
// The digest is checked before the snapshot is decoded.
//
// [WriteFile] installs an archive atomically under a [FileName] that
// sorts by snapshot time, and [Prune] keeps only the newest ones. A
// [Scheduler] combines the two on a cron [Schedule].
package backup
