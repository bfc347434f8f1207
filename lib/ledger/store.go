// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
)

// Sentinel errors. Implementations wrap these with context; callers
// classify with errors.Is.
var (
	ErrNotFound          = errors.New("ledger: not found")
	ErrDuplicate         = errors.New("ledger: duplicate account number or email")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrSameAccount       = errors.New("ledger: source and destination are the same account")
	ErrBalanceLimit      = errors.New("ledger: balance would exceed the maximum")
	ErrInvalidAmount     = errors.New("ledger: amount out of range")
)

// Store is the database facade. Every method is safe for concurrent
// use. Mutations are atomic: on error nothing has changed.
type Store interface {
	// FindUser returns the user with the given account number, or
	// ErrNotFound.
	FindUser(ctx context.Context, account bank.AccountNumber) (bank.User, error)

	// FindUserByEmail returns the user owning email, or ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (bank.User, error)

	// CreateUser stores a new user. CreatedAt and UpdatedAt are set by
	// the store. Returns ErrDuplicate if the account number or email
	// is taken. Account numbers of deleted users stay taken. A non-zero Balance is recorded as an opening deposit
	// so the history explains every unit.
	CreateUser(ctx context.Context, user bank.User) (bank.User, error)

	// UpdateUser applies update to an existing user and returns the
	// result. Returns ErrNotFound or, for an email collision,
	// ErrDuplicate. Balance is not reachable through an update.
	UpdateUser(ctx context.Context, account bank.AccountNumber, update bank.UserUpdate) (bank.User, error)

	// DeleteUser removes the user and returns the removed record. The
	// account's transactions stay in the history and its email becomes
	// free. Returns ErrNotFound.
	DeleteUser(ctx context.Context, account bank.AccountNumber) (bank.User, error)

	// RecordTransaction applies a signed single-account movement and
	// appends its history entry atomically. A debit below zero returns
	// ErrInsufficientFunds; a credit past bank.MaxAmount returns
	// ErrBalanceLimit; a zero amount or one beyond bank.MaxAmount
	// returns ErrInvalidAmount.
	RecordTransaction(ctx context.Context, account bank.AccountNumber, amount int64) (bank.Transaction, bank.User, error)

	// Transfer moves a positive amount between two accounts atomically
	// and returns both legs and the updated source user. Returns
	// ErrSameAccount, ErrNotFound for either side, ErrInvalidAmount,
	// ErrInsufficientFunds or ErrBalanceLimit.
	Transfer(ctx context.Context, from, to bank.AccountNumber, amount int64) (TransferResult, error)

	// ListTransactions returns an account's history, newest first. A
	// limit of zero or less returns everything. History survives user
	// deletion; an account that never existed has an empty history.
	ListTransactions(ctx context.Context, account bank.AccountNumber, limit int) ([]bank.Transaction, error)

	// ListUsers returns every live user ordered by account number.
	ListUsers(ctx context.Context) ([]bank.User, error)
}

// TransferResult holds both legs of a completed transfer.
type TransferResult struct {
	Debit  bank.Transaction
	Credit bank.Transaction
	Source bank.User
}

// Snapshot is a complete point-in-time copy of a store.
type Snapshot struct {
	Version      int                `cbor:"version"`
	TakenAt      time.Time          `cbor:"taken_at"`
	Users        []bank.User        `cbor:"users"`
	Retired      []RetiredAccount   `cbor:"retired,omitempty"`
	Transactions []bank.Transaction `cbor:"transactions"`
}

// RetiredAccount records a deleted user's account number so it is
// never reissued.
type RetiredAccount struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	DeletedAt     time.Time          `cbor:"deleted_at"`
}

// SnapshotVersion is the current Snapshot layout.
const SnapshotVersion = 1

// Snapshotter is implemented by stores that support backup and restore.
type Snapshotter interface {
	// Snapshot returns a consistent copy of every user and transaction.
	// Transactions are ordered by ID.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Restore replaces the store's entire contents with snapshot. The
	// snapshot's hash chains are verified first; a broken chain leaves
	// the store untouched.
	Restore(ctx context.Context, snapshot Snapshot) error
}
