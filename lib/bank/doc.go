// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bank defines Teller's domain model: users, their public
// profiles, account numbers, money amounts, and ledger transactions.
//
// Money is always an int64 count of the currency's smallest unit
// (cents). Nothing in Teller uses floating point for balances; the
// decimal form produced by [FormatAmount] and accepted by
// [ParseAmount] exists only at the presentation edge.
//
// This package has no Teller-internal dependencies.
package bank
