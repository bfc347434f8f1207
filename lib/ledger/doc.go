// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger defines the storage facade Teller's dispatcher talks
// to, the sentinel errors every implementation returns, and the
// per-account hash chain that makes transaction history
// tamper-evident.
//
// Two implementations live in subpackages: memstore (an in-process
// arena with one mutex per account) and sqlitestore (SQLite through
// lib/sqlitepool). Both satisfy [Store] and [Snapshotter], and both
// must pass the same behavioral contract: balances never go negative,
// transfers are all-or-nothing, and the sum of all balances changes
// only by the amounts of single-account transactions.
//
// # Hash chain
//
// Every transaction carries a [bank.Digest]: blake3 over the previous
// digest on the same account followed by the canonical CBOR encoding
// of the entry (with the digest itself excluded). The first entry on
// an account chains from the zero digest. [VerifyChain] recomputes a
// history and reports the first entry that does not match.
package ledger
