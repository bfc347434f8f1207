// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts ledger backups with age.
//
// Backups are encrypted to one or more x25519 recipients (age1...
// public keys) as a stream, so a large snapshot never needs a second
// in-memory copy. Private keys stay in [secret.Buffer] values: the
// keypair from [GenerateKeypair] and identities loaded for decryption
// are never held as long-lived heap strings.
package sealed
