// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch turns one decoded request plus a connection's
// session into one response plus the session to use next.
//
// Each request kind has a route: an access rule, the ordered list of
// fields to validate, and a handler that runs against the ledger. The
// pipeline is fixed:
//
//  1. Parse. Frames that do not decode produce ParseError.
//  2. Authorize. The access rule compares the session with the
//     request. A violation is a Failure that never reveals whether
//     the target exists.
//  3. Validate. Fields run through lib/validation in declared order
//     and the first failure becomes a ValidationError.
//  4. Execute. The handler talks to the [ledger.Store]. Ledger
//     sentinels become specific Failures; anything else is logged and
//     answered with a generic "internal error".
//
// The [Dispatcher] holds no per-connection state. Sessions are values
// owned by the caller, so one Dispatcher serves every connection
// concurrently.
package dispatch
