// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/codec"
)

// chainDomainKey is the blake3 key for transaction digests: the ASCII
// domain name zero-padded to 32 bytes. Changing it invalidates every
// stored chain.
var chainDomainKey = [32]byte{
	't', 'e', 'l', 'l', 'e', 'r', '.', 'l', 'e', 'd', 'g', 'e', 'r', '.',
	'c', 'h', 'a', 'i', 'n', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// chainEntry is the hashed form of a transaction. Timestamps are unix
// nanoseconds so the encoding does not depend on location or
// formatting.
type chainEntry struct {
	ID            int64  `cbor:"1,keyasint"`
	AccountNumber string `cbor:"2,keyasint"`
	Kind          string `cbor:"3,keyasint"`
	Amount        int64  `cbor:"4,keyasint"`
	Counterparty  string `cbor:"5,keyasint,omitempty"`
	Balance       int64  `cbor:"6,keyasint"`
	Timestamp     int64  `cbor:"7,keyasint"`
}

// ComputeDigest returns the chain digest of transaction following
// previous. The transaction's own Digest field is ignored.
func ComputeDigest(previous bank.Digest, transaction bank.Transaction) (bank.Digest, error) {
	encoded, err := codec.Marshal(chainEntry{
		ID:            transaction.ID,
		AccountNumber: string(transaction.AccountNumber),
		Kind:          string(transaction.Kind),
		Amount:        transaction.Amount,
		Counterparty:  string(transaction.Counterparty),
		Balance:       transaction.Balance,
		Timestamp:     transaction.Timestamp.UnixNano(),
	})
	if err != nil {
		return bank.Digest{}, fmt.Errorf("encoding chain entry %d: %w", transaction.ID, err)
	}

	hasher, err := blake3.NewKeyed(chainDomainKey[:])
	if err != nil {
		return bank.Digest{}, fmt.Errorf("initializing chain hasher: %w", err)
	}
	hasher.Write(previous[:])
	hasher.Write(encoded)

	var digest bank.Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// Seal computes transaction's digest from previous and stores it in
// the transaction.
func Seal(previous bank.Digest, transaction *bank.Transaction) error {
	digest, err := ComputeDigest(previous, *transaction)
	if err != nil {
		return err
	}
	transaction.Digest = digest
	return nil
}

// ChainError reports the first transaction whose digest or running
// balance does not follow from its predecessor.
type ChainError struct {
	AccountNumber bank.AccountNumber
	TransactionID int64
	Reason        string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("ledger: chain broken on account %s at transaction %d: %s",
		e.AccountNumber, e.TransactionID, e.Reason)
}

// VerifyChain checks one account's history in ascending ID order. It
// recomputes every digest and checks that each entry's balance equals
// the previous balance plus its amount. It returns the final balance.
func VerifyChain(account bank.AccountNumber, history []bank.Transaction) (int64, error) {
	var previous bank.Digest
	var balance int64
	for index, transaction := range history {
		fail := func(reason string) (int64, error) {
			return 0, &ChainError{AccountNumber: account, TransactionID: transaction.ID, Reason: reason}
		}
		if transaction.AccountNumber != account {
			return fail(fmt.Sprintf("entry belongs to account %s", transaction.AccountNumber))
		}
		if index > 0 && transaction.ID <= history[index-1].ID {
			return fail("ids are not ascending")
		}
		if transaction.Balance != balance+transaction.Amount {
			return fail(fmt.Sprintf("balance %d does not follow %d%+d",
				transaction.Balance, balance, transaction.Amount))
		}
		expected, err := ComputeDigest(previous, transaction)
		if err != nil {
			return 0, err
		}
		if expected != transaction.Digest {
			return fail("digest mismatch")
		}
		previous = transaction.Digest
		balance = transaction.Balance
	}
	return balance, nil
}

// VerifySnapshot verifies every account chain in snapshot and checks
// that each user's balance matches the end of its chain.
func VerifySnapshot(snapshot Snapshot) error {
	histories := make(map[bank.AccountNumber][]bank.Transaction)
	for _, transaction := range snapshot.Transactions {
		histories[transaction.AccountNumber] = append(histories[transaction.AccountNumber], transaction)
	}

	accounts := make([]bank.AccountNumber, 0, len(histories))
	for account := range histories {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)

	finals := make(map[bank.AccountNumber]int64, len(histories))
	for _, account := range accounts {
		history := histories[account]
		slices.SortFunc(history, func(a, b bank.Transaction) int { return cmp.Compare(a.ID, b.ID) })
		final, err := VerifyChain(account, history)
		if err != nil {
			return err
		}
		finals[account] = final
	}

	seen := make(map[bank.AccountNumber]bool, len(snapshot.Users)+len(snapshot.Retired))
	for _, retired := range snapshot.Retired {
		if seen[retired.AccountNumber] {
			return fmt.Errorf("ledger: snapshot lists account %s twice", retired.AccountNumber)
		}
		seen[retired.AccountNumber] = true
	}
	for _, user := range snapshot.Users {
		if seen[user.AccountNumber] {
			return fmt.Errorf("ledger: snapshot lists account %s twice", user.AccountNumber)
		}
		seen[user.AccountNumber] = true
		if user.Balance != finals[user.AccountNumber] {
			return fmt.Errorf("ledger: account %s balance %d does not match its history total %d",
				user.AccountNumber, user.Balance, finals[user.AccountNumber])
		}
	}
	return nil
}
