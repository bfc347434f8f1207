// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by Teller's package tests.
//
// [SocketDir] returns a short directory under /tmp for Unix sockets,
// whose paths are limited to 108 bytes. [RequireReceive] and
// [RequireClosed] wrap a channel wait in a timeout so a hung server fails the test instead of stalling it.
// [Logger] routes slog output through t.Log so it appears only for
// failing tests. [UniqueID] produces distinct identifiers for
// accounts and emails created by concurrent tests.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
