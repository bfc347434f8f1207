// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
)

func sealedHistory(t *testing.T, account bank.AccountNumber, amounts ...int64) []bank.Transaction {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var previous bank.Digest
	var balance int64
	history := make([]bank.Transaction, 0, len(amounts))
	for index, amount := range amounts {
		balance += amount
		transaction := bank.Transaction{
			ID:            int64(index + 1),
			AccountNumber: account,
			Kind:          bank.KindForAmount(amount),
			Amount:        amount,
			Balance:       balance,
			Timestamp:     base.Add(time.Duration(index) * time.Minute),
		}
		if err := Seal(previous, &transaction); err != nil {
			t.Fatalf("Seal: %v", err)
		}
		previous = transaction.Digest
		history = append(history, transaction)
	}
	return history
}

func TestComputeDigestDeterministic(t *testing.T) {
	transaction := bank.Transaction{
		ID:            7,
		AccountNumber: "1001",
		Kind:          bank.KindDeposit,
		Amount:        500,
		Balance:       500,
		Timestamp:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	first, err := ComputeDigest(bank.Digest{}, transaction)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}

	// Same instant in another location must hash identically.
	moved := transaction
	moved.Timestamp = transaction.Timestamp.In(time.FixedZone("UTC+3", 3*3600))
	moved.Digest = bank.Digest{1, 2, 3}
	second, err := ComputeDigest(bank.Digest{}, moved)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	if first != second {
		t.Errorf("digest depends on location or stored digest: %s vs %s", first, second)
	}

	chained, err := ComputeDigest(first, transaction)
	if err != nil {
		t.Fatalf("ComputeDigest: %v", err)
	}
	if chained == first {
		t.Error("digest does not depend on the previous digest")
	}
}

func TestVerifyChain(t *testing.T) {
	history := sealedHistory(t, "1001", 1000, -250, 75)
	final, err := VerifyChain("1001", history)
	if err != nil {
		t.Fatalf("VerifyChain: %v", err)
	}
	if final != 825 {
		t.Errorf("final balance = %d, want 825", final)
	}

	if final, err := VerifyChain("1001", nil); err != nil || final != 0 {
		t.Errorf("empty chain = (%d, %v), want (0, nil)", final, err)
	}
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(history []bank.Transaction)
		wantID int64
	}{
		{
			name:   "amount rewritten with balance fixed up",
			tamper: func(h []bank.Transaction) { h[1].Amount = -200; h[1].Balance = 800; h[2].Balance = 875 },
			wantID: 2,
		},
		{
			name:   "balance inconsistent",
			tamper: func(h []bank.Transaction) { h[2].Balance = 9999 },
			wantID: 3,
		},
		{
			name:   "entry removed",
			tamper: func(h []bank.Transaction) { h[1] = h[2] },
			wantID: 3,
		},
		{
			name:   "timestamp moved",
			tamper: func(h []bank.Transaction) { h[0].Timestamp = h[0].Timestamp.Add(time.Second) },
			wantID: 1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			history := sealedHistory(t, "1001", 1000, -250, 75)
			test.tamper(history)
			_, err := VerifyChain("1001", history)
			var chainErr *ChainError
			if !errors.As(err, &chainErr) {
				t.Fatalf("VerifyChain error = %v, want *ChainError", err)
			}
			if chainErr.TransactionID != test.wantID {
				t.Errorf("broken at %d, want %d (%s)", chainErr.TransactionID, test.wantID, chainErr.Reason)
			}
		})
	}
}

func TestVerifySnapshot(t *testing.T) {
	alice := sealedHistory(t, "1001", 1000, -250)
	bob := sealedHistory(t, "2002", 40)
	for index := range bob {
		bob[index].ID += 10
	}
	// Renumbering invalidates bob's digests; reseal.
	var previous bank.Digest
	for index := range bob {
		if err := Seal(previous, &bob[index]); err != nil {
			t.Fatalf("Seal: %v", err)
		}
		previous = bob[index].Digest
	}

	snapshot := Snapshot{
		Version: SnapshotVersion,
		Users: []bank.User{
			{AccountNumber: "1001", Balance: 750},
			{AccountNumber: "2002", Balance: 40},
			{AccountNumber: "3003", Balance: 0},
		},
		Transactions: append(append([]bank.Transaction{}, bob...), alice...),
	}
	if err := VerifySnapshot(snapshot); err != nil {
		t.Fatalf("VerifySnapshot: %v", err)
	}

	snapshot.Users[1].Balance = 41
	if err := VerifySnapshot(snapshot); err == nil {
		t.Error("VerifySnapshot accepted a balance that disagrees with history")
	}

	snapshot.Users[1].Balance = 40
	snapshot.Users = append(snapshot.Users, bank.User{AccountNumber: "1001", Balance: 750})
	if err := VerifySnapshot(snapshot); err == nil {
		t.Error("VerifySnapshot accepted a duplicated account")
	}
}
