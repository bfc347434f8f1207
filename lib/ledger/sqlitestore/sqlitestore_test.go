// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger/ledgertest"
)

func openTestStore(t *testing.T, path string, clk clock.Clock) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{Path: path, PoolSize: 4, Clock: clk})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T, clk clock.Clock) ledgertest.Backend {
		return openTestStore(t, filepath.Join(t.TempDir(), "ledger.db"), clk)
	})
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()
	clk := clock.Fake(ledgertest.Epoch)

	first, err := Open(ctx, Config{Path: path, Clock: clk})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := first.CreateUser(ctx, ledgertest.NewUser("1001", 250)); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, _, err := first.RecordTransaction(ctx, "1001", -50); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := openTestStore(t, path, clk)
	user, err := second.FindUser(ctx, "1001")
	if err != nil {
		t.Fatalf("FindUser after reopen: %v", err)
	}
	if user.Balance != 200 {
		t.Errorf("balance after reopen = %d, want 200", user.Balance)
	}
	if !user.CreatedAt.Equal(ledgertest.Epoch) {
		t.Errorf("CreatedAt after reopen = %v, want %v", user.CreatedAt, ledgertest.Epoch)
	}

	// The chain must continue across the reopen.
	if _, _, err := second.RecordTransaction(ctx, "1001", 10); err != nil {
		t.Fatalf("RecordTransaction after reopen: %v", err)
	}
	history, err := second.ListTransactions(ctx, "1001", 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(history) != 3 || history[0].Balance != 210 {
		t.Fatalf("history after reopen = %+v", history)
	}
	snapshot, err := second.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snapshot.Transactions) != 3 {
		t.Errorf("snapshot has %d transactions, want 3", len(snapshot.Transactions))
	}
}
