// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestSocketPathIsShort(t *testing.T) {
	path := SocketPath(t, "teller")
	if len(path) >= 108 {
		t.Errorf("socket path %q is %d bytes", path, len(path))
	}
	if _, err := os.Stat(strings.TrimSuffix(path, "/teller.sock")); err != nil {
		t.Errorf("socket directory missing: %v", err)
	}
}

func TestUniqueValuesDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		for _, value := range []string{UniqueID("x"), UniqueAccount(), UniqueEmail("u")} {
			if seen[value] {
				t.Fatalf("duplicate value %q", value)
			}
			seen[value] = true
		}
	}
}

func TestRequireReceive(t *testing.T) {
	values := make(chan int, 1)
	values <- 7
	if got := RequireReceive(t, values, time.Second, "value"); got != 7 {
		t.Errorf("got %d, want 7", got)
	}

	done := make(chan struct{})
	close(done)
	RequireClosed(t, done, time.Second, "closed channel")
}
