// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/ledger/ledgertest"
)

func TestContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T, clk clock.Clock) ledgertest.Backend {
		return New(clk)
	})
}

// Deleting an account while transfers target it must never credit a
// deleted slot: every transfer either lands before the delete or fails.
func TestDeleteRacesTransfers(t *testing.T) {
	store := New(clock.Real())
	ctx := context.Background()
	for _, user := range []bank.User{ledgertest.NewUser("1001", 10_000), ledgertest.NewUser("2002", 0)} {
		if _, err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	var waitGroup sync.WaitGroup
	var landed int64
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		for range 500 {
			_, err := store.Transfer(ctx, "1001", "2002", 1)
			switch {
			case err == nil:
				landed++
			case errors.Is(err, ledger.ErrNotFound):
				return
			default:
				t.Errorf("Transfer: %v", err)
				return
			}
		}
	}()

	removed, err := store.DeleteUser(ctx, "2002")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	waitGroup.Wait()

	history, err := store.ListTransactions(ctx, "2002", 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if int64(len(history)) != landed {
		t.Errorf("deleted account has %d credits, but %d transfers succeeded", len(history), landed)
	}
	if removed.Balance > landed {
		t.Errorf("removed balance %d exceeds %d landed transfers", removed.Balance, landed)
	}
	source, err := store.FindUser(ctx, "1001")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if source.Balance != 10_000-landed {
		t.Errorf("source balance = %d, want %d", source.Balance, 10_000-landed)
	}
}
