// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the current time so ledger timestamps can be
// controlled in tests. Production code injects [Real]; tests inject
// [Fake] and advance it explicitly.
package clock
