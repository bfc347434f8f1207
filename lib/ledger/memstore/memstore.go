// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memstore is an in-process [ledger.Store].
//
// Accounts live in an arena keyed by account number. Each account has
// its own mutex, so operations on different accounts run in parallel
// and two operations on the same account serialize. A transfer locks
// both accounts in ascending account-number order, which rules out
// lock-order deadlocks between opposite transfers.
//
// Lock order is gate, then account slots (ascending), then the index
// lock. The gate is held shared by every operation and exclusively by
// Snapshot and Restore, which need the whole arena still.
//
// Slots are never removed from the arena. Deleting a user marks its
// slot deleted, keeps its history, and frees its email.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
)

// Store is the in-memory ledger. The zero value is not usable; call New.
type Store struct {
	clock clock.Clock

	gate sync.RWMutex

	// indexMu guards the two maps. It is held only briefly and never
	// while acquiring a slot lock.
	indexMu  sync.RWMutex
	accounts map[bank.AccountNumber]*slot
	emails   map[string]bank.AccountNumber

	lastID atomic.Int64
}

type slot struct {
	mu        sync.Mutex
	user      bank.User
	deleted   bool
	deletedAt time.Time
	history   []bank.Transaction
}

func (s *slot) head() bank.Digest {
	if len(s.history) == 0 {
		return bank.Digest{}
	}
	return s.history[len(s.history)-1].Digest
}

var (
	_ ledger.Store       = (*Store)(nil)
	_ ledger.Snapshotter = (*Store)(nil)
)

// New returns an empty store stamping entries with clk.
func New(clk clock.Clock) *Store {
	return &Store{
		clock:    clk,
		accounts: make(map[bank.AccountNumber]*slot),
		emails:   make(map[string]bank.AccountNumber),
	}
}

// lookup returns the slot for account, or nil. The caller must lock
// the slot and check deleted.
func (s *Store) lookup(account bank.AccountNumber) *slot {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	return s.accounts[account]
}

// appendEntry assigns an ID, seals, and appends a history entry. The
// caller holds the slot lock.
func (s *Store) appendEntry(target *slot, transaction bank.Transaction) (bank.Transaction, error) {
	transaction.ID = s.lastID.Add(1)
	if err := ledger.Seal(target.head(), &transaction); err != nil {
		return bank.Transaction{}, err
	}
	target.history = append(target.history, transaction)
	return transaction, nil
}

func (s *Store) FindUser(ctx context.Context, account bank.AccountNumber) (bank.User, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	target := s.lookup(account)
	if target == nil {
		return bank.User{}, fmt.Errorf("finding account %s: %w", account, ledger.ErrNotFound)
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.deleted {
		return bank.User{}, fmt.Errorf("finding account %s: %w", account, ledger.ErrNotFound)
	}
	return target.user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (bank.User, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	s.indexMu.RLock()
	account, ok := s.emails[email]
	s.indexMu.RUnlock()
	if !ok {
		return bank.User{}, fmt.Errorf("finding email %q: %w", email, ledger.ErrNotFound)
	}

	target := s.lookup(account)
	target.mu.Lock()
	defer target.mu.Unlock()
	// The email may have moved between the index read and the lock.
	if target.deleted || target.user.Email != email {
		return bank.User{}, fmt.Errorf("finding email %q: %w", email, ledger.ErrNotFound)
	}
	return target.user, nil
}

func (s *Store) CreateUser(ctx context.Context, user bank.User) (bank.User, error) {
	if user.Balance < 0 || user.Balance > bank.MaxAmount {
		return bank.User{}, fmt.Errorf("creating account %s: opening balance %d: %w",
			user.AccountNumber, user.Balance, ledger.ErrInvalidAmount)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	now := s.clock.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	created := &slot{user: user}
	if user.Balance > 0 {
		// The slot is not visible yet, so its lock is not needed.
		if _, err := s.appendEntry(created, bank.Transaction{
			AccountNumber: user.AccountNumber,
			Kind:          bank.KindDeposit,
			Amount:        user.Balance,
			Balance:       user.Balance,
			Timestamp:     now,
		}); err != nil {
			return bank.User{}, fmt.Errorf("creating account %s: %w", user.AccountNumber, err)
		}
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if _, exists := s.accounts[user.AccountNumber]; exists {
		return bank.User{}, fmt.Errorf("creating account %s: %w", user.AccountNumber, ledger.ErrDuplicate)
	}
	if _, exists := s.emails[user.Email]; exists {
		return bank.User{}, fmt.Errorf("creating account %s: email %q: %w",
			user.AccountNumber, user.Email, ledger.ErrDuplicate)
	}
	s.accounts[user.AccountNumber] = created
	s.emails[user.Email] = user.AccountNumber
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, account bank.AccountNumber, update bank.UserUpdate) (bank.User, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	target := s.lookup(account)
	if target == nil {
		return bank.User{}, fmt.Errorf("updating account %s: %w", account, ledger.ErrNotFound)
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.deleted {
		return bank.User{}, fmt.Errorf("updating account %s: %w", account, ledger.ErrNotFound)
	}

	updated := update.Apply(target.user)
	updated.UpdatedAt = s.clock.Now()

	if updated.Email != target.user.Email {
		s.indexMu.Lock()
		if _, exists := s.emails[updated.Email]; exists {
			s.indexMu.Unlock()
			return bank.User{}, fmt.Errorf("updating account %s: email %q: %w",
				account, updated.Email, ledger.ErrDuplicate)
		}
		delete(s.emails, target.user.Email)
		s.emails[updated.Email] = account
		s.indexMu.Unlock()
	}

	target.user = updated
	return updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, account bank.AccountNumber) (bank.User, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	target := s.lookup(account)
	if target == nil {
		return bank.User{}, fmt.Errorf("deleting account %s: %w", account, ledger.ErrNotFound)
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.deleted {
		return bank.User{}, fmt.Errorf("deleting account %s: %w", account, ledger.ErrNotFound)
	}

	s.indexMu.Lock()
	delete(s.emails, target.user.Email)
	s.indexMu.Unlock()

	removed := target.user
	target.deleted = true
	target.deletedAt = s.clock.Now()
	return removed, nil
}

func (s *Store) RecordTransaction(ctx context.Context, account bank.AccountNumber, amount int64) (bank.Transaction, bank.User, error) {
	if amount == 0 || amount > bank.MaxAmount || amount < -bank.MaxAmount {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording %d on %s: %w", amount, account, ledger.ErrInvalidAmount)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	target := s.lookup(account)
	if target == nil {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording on %s: %w", account, ledger.ErrNotFound)
	}
	target.mu.Lock()
	defer target.mu.Unlock()
	if target.deleted {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording on %s: %w", account, ledger.ErrNotFound)
	}

	balance := target.user.Balance + amount
	if balance < 0 {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording %d on %s: %w", amount, account, ledger.ErrInsufficientFunds)
	}
	if balance > bank.MaxAmount {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording %d on %s: %w", amount, account, ledger.ErrBalanceLimit)
	}

	now := s.clock.Now()
	transaction, err := s.appendEntry(target, bank.Transaction{
		AccountNumber: account,
		Kind:          bank.KindForAmount(amount),
		Amount:        amount,
		Balance:       balance,
		Timestamp:     now,
	})
	if err != nil {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording on %s: %w", account, err)
	}
	target.user.Balance = balance
	target.user.UpdatedAt = now
	return transaction, target.user, nil
}

func (s *Store) Transfer(ctx context.Context, from, to bank.AccountNumber, amount int64) (ledger.TransferResult, error) {
	if from == to {
		return ledger.TransferResult{}, fmt.Errorf("transfer %s -> %s: %w", from, to, ledger.ErrSameAccount)
	}
	if amount <= 0 || amount > bank.MaxAmount {
		return ledger.TransferResult{}, fmt.Errorf("transfer %d from %s: %w", amount, from, ledger.ErrInvalidAmount)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	source, destination := s.lookup(from), s.lookup(to)
	if source == nil {
		return ledger.TransferResult{}, fmt.Errorf("transfer source %s: %w", from, ledger.ErrNotFound)
	}
	if destination == nil {
		return ledger.TransferResult{}, fmt.Errorf("transfer destination %s: %w", to, ledger.ErrNotFound)
	}

	first, second := source, destination
	if to < from {
		first, second = destination, source
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if source.deleted {
		return ledger.TransferResult{}, fmt.Errorf("transfer source %s: %w", from, ledger.ErrNotFound)
	}
	if destination.deleted {
		return ledger.TransferResult{}, fmt.Errorf("transfer destination %s: %w", to, ledger.ErrNotFound)
	}
	sourceBalance := source.user.Balance - amount
	if sourceBalance < 0 {
		return ledger.TransferResult{}, fmt.Errorf("transfer %d from %s: %w", amount, from, ledger.ErrInsufficientFunds)
	}
	destinationBalance := destination.user.Balance + amount
	if destinationBalance > bank.MaxAmount {
		return ledger.TransferResult{}, fmt.Errorf("transfer %d to %s: %w", amount, to, ledger.ErrBalanceLimit)
	}

	now := s.clock.Now()
	debit, err := s.appendEntry(source, bank.Transaction{
		AccountNumber: from,
		Kind:          bank.KindTransferOut,
		Amount:        -amount,
		Counterparty:  to,
		Balance:       sourceBalance,
		Timestamp:     now,
	})
	if err != nil {
		return ledger.TransferResult{}, fmt.Errorf("transfer debit on %s: %w", from, err)
	}
	credit, err := s.appendEntry(destination, bank.Transaction{
		AccountNumber: to,
		Kind:          bank.KindTransferIn,
		Amount:        amount,
		Counterparty:  from,
		Balance:       destinationBalance,
		Timestamp:     now,
	})
	if err != nil {
		source.history = source.history[:len(source.history)-1]
		return ledger.TransferResult{}, fmt.Errorf("transfer credit on %s: %w", to, err)
	}

	source.user.Balance = sourceBalance
	source.user.UpdatedAt = now
	destination.user.Balance = destinationBalance
	destination.user.UpdatedAt = now
	return ledger.TransferResult{Debit: debit, Credit: credit, Source: source.user}, nil
}

func (s *Store) ListTransactions(ctx context.Context, account bank.AccountNumber, limit int) ([]bank.Transaction, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	target := s.lookup(account)
	if target == nil {
		return []bank.Transaction{}, nil
	}
	target.mu.Lock()
	defer target.mu.Unlock()

	count := len(target.history)
	if limit > 0 && limit < count {
		count = limit
	}
	result := make([]bank.Transaction, 0, count)
	for index := len(target.history) - 1; index >= 0 && len(result) < count; index-- {
		result = append(result, target.history[index])
	}
	return result, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]bank.User, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	s.indexMu.RLock()
	slots := make([]*slot, 0, len(s.accounts))
	for _, target := range s.accounts {
		slots = append(slots, target)
	}
	s.indexMu.RUnlock()

	users := make([]bank.User, 0, len(slots))
	for _, target := range slots {
		target.mu.Lock()
		if !target.deleted {
			users = append(users, target.user)
		}
		target.mu.Unlock()
	}
	slices.SortFunc(users, func(a, b bank.User) int { return cmp.Compare(a.AccountNumber, b.AccountNumber) })
	return users, nil
}

func (s *Store) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	snapshot := ledger.Snapshot{
		Version:      ledger.SnapshotVersion,
		TakenAt:      s.clock.Now(),
		Users:        []bank.User{},
		Transactions: []bank.Transaction{},
	}
	for _, target := range s.accounts {
		if target.deleted {
			snapshot.Retired = append(snapshot.Retired, ledger.RetiredAccount{
				AccountNumber: target.user.AccountNumber,
				DeletedAt:     target.deletedAt,
			})
		} else {
			snapshot.Users = append(snapshot.Users, target.user)
		}
		snapshot.Transactions = append(snapshot.Transactions, target.history...)
	}
	slices.SortFunc(snapshot.Users, func(a, b bank.User) int { return cmp.Compare(a.AccountNumber, b.AccountNumber) })
	slices.SortFunc(snapshot.Retired, func(a, b ledger.RetiredAccount) int {
		return cmp.Compare(a.AccountNumber, b.AccountNumber)
	})
	slices.SortFunc(snapshot.Transactions, func(a, b bank.Transaction) int { return cmp.Compare(a.ID, b.ID) })
	return snapshot, nil
}

func (s *Store) Restore(ctx context.Context, snapshot ledger.Snapshot) error {
	if snapshot.Version != ledger.SnapshotVersion {
		return fmt.Errorf("restoring snapshot: unsupported version %d", snapshot.Version)
	}
	if err := ledger.VerifySnapshot(snapshot); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	accounts := make(map[bank.AccountNumber]*slot, len(snapshot.Users)+len(snapshot.Retired))
	emails := make(map[string]bank.AccountNumber, len(snapshot.Users))
	for _, user := range snapshot.Users {
		if _, exists := emails[user.Email]; exists {
			return fmt.Errorf("restoring snapshot: email %q: %w", user.Email, ledger.ErrDuplicate)
		}
		accounts[user.AccountNumber] = &slot{user: user}
		emails[user.Email] = user.AccountNumber
	}
	for _, retired := range snapshot.Retired {
		accounts[retired.AccountNumber] = &slot{
			user:      bank.User{AccountNumber: retired.AccountNumber},
			deleted:   true,
			deletedAt: retired.DeletedAt,
		}
	}

	transactions := slices.Clone(snapshot.Transactions)
	slices.SortFunc(transactions, func(a, b bank.Transaction) int { return cmp.Compare(a.ID, b.ID) })
	var lastID int64
	for _, transaction := range transactions {
		target, ok := accounts[transaction.AccountNumber]
		if !ok {
			return fmt.Errorf("restoring snapshot: transaction %d names unknown account %s",
				transaction.ID, transaction.AccountNumber)
		}
		target.history = append(target.history, transaction)
		lastID = transaction.ID
	}

	s.gate.Lock()
	defer s.gate.Unlock()
	s.indexMu.Lock()
	s.accounts = accounts
	s.emails = emails
	s.indexMu.Unlock()
	s.lastID.Store(lastID)
	return nil
}
