// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns "prefix-N" with N increasing across the test
// binary.
//
//	testutil.UniqueID("conn") // "conn-1", "conn-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// UniqueAccount returns a distinct valid account number. Numbers start
// at 500000 so they never collide with hand-picked fixtures.
func UniqueAccount() string {
	return fmt.Sprintf("%d", 500000+uniqueCounter.Add(1))
}

// UniqueEmail returns a distinct valid email address.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s%d@example.com", prefix, uniqueCounter.Add(1))
}
