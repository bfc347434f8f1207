// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package validation holds Teller's per-field business rules.
//
// Each rule is a [Strategy]: a stateless predicate over the raw
// textual form of one field. Strategies share no state and are safe
// to reuse across goroutines. The dispatcher builds a list of
// [Field] values for each request kind in a fixed order and calls
// [First], which stops at the first failure. Reporting only the first
// failure keeps responses small and unambiguous.
//
// Numeric fields are validated in their base-10 text form so the same
// strategies serve wire payloads, seed files, and CLI input.
package validation
