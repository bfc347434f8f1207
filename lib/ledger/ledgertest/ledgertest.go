// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledgertest is the behavioral contract every ledger.Store
// implementation must pass. Implementation packages call [Run] from
// their own tests with a constructor for a fresh, empty store.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
)

// Backend is a store that also supports snapshots.
type Backend interface {
	ledger.Store
	ledger.Snapshotter
}

// Opener returns a fresh, empty backend stamping entries with clk.
// Cleanup is the opener's responsibility (t.Cleanup).
type Opener func(t *testing.T, clk clock.Clock) Backend

// Epoch is the fake clock's starting instant in contract tests.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Run executes the contract as subtests.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		run  func(t *testing.T, open Opener)
	}{
		{"CreateAndFind", testCreateAndFind},
		{"CreateDuplicate", testCreateDuplicate},
		{"OpeningBalanceRecorded", testOpeningBalanceRecorded},
		{"UpdateUser", testUpdateUser},
		{"DeleteUser", testDeleteUser},
		{"RecordTransaction", testRecordTransaction},
		{"RecordTransactionRejected", testRecordTransactionRejected},
		{"Transfer", testTransfer},
		{"TransferRejected", testTransferRejected},
		{"ListTransactions", testListTransactions},
		{"ListUsers", testListUsers},
		{"ConcurrentOppositeTransfers", testConcurrentOppositeTransfers},
		{"ConcurrentConservation", testConcurrentConservation},
		{"SnapshotRestore", testSnapshotRestore},
		{"RestoreRejectsBrokenChain", testRestoreRejectsBrokenChain},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) { test.run(t, open) })
	}
}

// NewUser returns a valid user record for account with balance.
func NewUser(account bank.AccountNumber, balance int64) bank.User {
	return bank.User{
		AccountNumber: account,
		FirstName:     "Test",
		LastName:      "User",
		Email:         fmt.Sprintf("user%s@example.com", account),
		PasswordHash:  "hash-" + string(account),
		Balance:       balance,
	}
}

func mustCreate(t *testing.T, store ledger.Store, user bank.User) bank.User {
	t.Helper()
	created, err := store.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", user.AccountNumber, err)
	}
	return created
}

func mustBalance(t *testing.T, store ledger.Store, account bank.AccountNumber) int64 {
	t.Helper()
	user, err := store.FindUser(context.Background(), account)
	if err != nil {
		t.Fatalf("FindUser(%s): %v", account, err)
	}
	return user.Balance
}

// verifyStore snapshots the store and checks every chain and balance.
func verifyStore(t *testing.T, store Backend) ledger.Snapshot {
	t.Helper()
	snapshot, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if err := ledger.VerifySnapshot(snapshot); err != nil {
		t.Fatalf("VerifySnapshot: %v", err)
	}
	return snapshot
}

func testCreateAndFind(t *testing.T, open Opener) {
	clk := clock.Fake(Epoch)
	store := open(t, clk)
	ctx := context.Background()

	user := NewUser("1001", 0)
	user.Admin = true
	created := mustCreate(t, store, user)
	if !created.CreatedAt.Equal(Epoch) || !created.UpdatedAt.Equal(Epoch) {
		t.Errorf("timestamps = %v/%v, want %v", created.CreatedAt, created.UpdatedAt, Epoch)
	}

	found, err := store.FindUser(ctx, "1001")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if found.Email != user.Email || found.PasswordHash != user.PasswordHash || !found.Admin {
		t.Errorf("FindUser = %+v, want fields of %+v", found, user)
	}
	if !found.CreatedAt.Equal(Epoch) {
		t.Errorf("stored CreatedAt = %v, want %v", found.CreatedAt, Epoch)
	}

	byEmail, err := store.FindUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if byEmail.AccountNumber != "1001" {
		t.Errorf("FindUserByEmail account = %s, want 1001", byEmail.AccountNumber)
	}

	if _, err := store.FindUser(ctx, "9999"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("FindUser(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := store.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("FindUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

func testCreateDuplicate(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 0))

	sameAccount := NewUser("1001", 0)
	sameAccount.Email = "other@example.com"
	if _, err := store.CreateUser(ctx, sameAccount); !errors.Is(err, ledger.ErrDuplicate) {
		t.Errorf("duplicate account error = %v, want ErrDuplicate", err)
	}

	sameEmail := NewUser("2002", 0)
	sameEmail.Email = NewUser("1001", 0).Email
	if _, err := store.CreateUser(ctx, sameEmail); !errors.Is(err, ledger.ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}
	if _, err := store.FindUser(ctx, "2002"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("rejected user was stored: %v", err)
	}
}

func testOpeningBalanceRecorded(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 5000))

	history, err := store.ListTransactions(ctx, "1001", 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history has %d entries, want 1 opening deposit", len(history))
	}
	if history[0].Kind != bank.KindDeposit || history[0].Amount != 5000 || history[0].Balance != 5000 {
		t.Errorf("opening entry = %+v", history[0])
	}
	verifyStore(t, store)

	if _, err := store.CreateUser(ctx, NewUser("2002", -1)); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Errorf("negative opening balance error = %v, want ErrInvalidAmount", err)
	}
}

func testUpdateUser(t *testing.T, open Opener) {
	clk := clock.Fake(Epoch)
	store := open(t, clk)
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 100))
	mustCreate(t, store, NewUser("2002", 0))

	clk.Advance(time.Hour)
	newEmail := "renamed@example.com"
	newName := "Renamed"
	admin := true
	updated, err := store.UpdateUser(ctx, "1001", bank.UserUpdate{Email: &newEmail, FirstName: &newName, Admin: &admin})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Email != newEmail || updated.FirstName != newName || !updated.Admin {
		t.Errorf("UpdateUser = %+v", updated)
	}
	if updated.Balance != 100 {
		t.Errorf("balance changed by update: %d", updated.Balance)
	}
	if !updated.UpdatedAt.Equal(Epoch.Add(time.Hour)) || !updated.CreatedAt.Equal(Epoch) {
		t.Errorf("timestamps = %v/%v", updated.CreatedAt, updated.UpdatedAt)
	}

	if _, err := store.FindUserByEmail(ctx, NewUser("1001", 0).Email); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("old email still resolves: %v", err)
	}
	if found, err := store.FindUserByEmail(ctx, newEmail); err != nil || found.AccountNumber != "1001" {
		t.Errorf("new email lookup = (%s, %v)", found.AccountNumber, err)
	}

	taken := NewUser("2002", 0).Email
	if _, err := store.UpdateUser(ctx, "1001", bank.UserUpdate{Email: &taken}); !errors.Is(err, ledger.ErrDuplicate) {
		t.Errorf("email collision error = %v, want ErrDuplicate", err)
	}
	if _, err := store.UpdateUser(ctx, "9999", bank.UserUpdate{FirstName: &newName}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("unknown account error = %v, want ErrNotFound", err)
	}
}

func testDeleteUser(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	user := mustCreate(t, store, NewUser("1001", 700))

	removed, err := store.DeleteUser(ctx, "1001")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if removed.AccountNumber != "1001" || removed.Balance != 700 {
		t.Errorf("removed = %+v", removed)
	}
	if _, err := store.DeleteUser(ctx, "1001"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second DeleteUser error = %v, want ErrNotFound", err)
	}
	if _, err := store.FindUser(ctx, "1001"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("FindUser after delete error = %v, want ErrNotFound", err)
	}

	history, err := store.ListTransactions(ctx, "1001", 0)
	if err != nil || len(history) != 1 {
		t.Errorf("history after delete = %d entries, %v; want 1", len(history), err)
	}

	// The email is free again; the account number is not.
	reuseEmail := NewUser("2002", 0)
	reuseEmail.Email = user.Email
	mustCreate(t, store, reuseEmail)
	if _, err := store.CreateUser(ctx, NewUser("1001", 0)); !errors.Is(err, ledger.ErrDuplicate) {
		t.Errorf("reusing a deleted account number error = %v, want ErrDuplicate", err)
	}
	verifyStore(t, store)
}

func testRecordTransaction(t *testing.T, open Opener) {
	clk := clock.Fake(Epoch)
	store := open(t, clk)
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 0))

	clk.Advance(time.Minute)
	deposit, user, err := store.RecordTransaction(ctx, "1001", 1200)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if deposit.Kind != bank.KindDeposit || deposit.Balance != 1200 || user.Balance != 1200 {
		t.Errorf("deposit = %+v, user balance %d", deposit, user.Balance)
	}
	if !deposit.Timestamp.Equal(Epoch.Add(time.Minute)) {
		t.Errorf("deposit timestamp = %v", deposit.Timestamp)
	}
	if deposit.Digest.IsZero() {
		t.Error("deposit was not sealed")
	}

	withdrawal, user, err := store.RecordTransaction(ctx, "1001", -200)
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if withdrawal.Kind != bank.KindWithdrawal || withdrawal.Amount != -200 || user.Balance != 1000 {
		t.Errorf("withdrawal = %+v, user balance %d", withdrawal, user.Balance)
	}
	if withdrawal.ID <= deposit.ID {
		t.Errorf("ids not increasing: %d then %d", deposit.ID, withdrawal.ID)
	}

	// Exactly draining the account is allowed.
	if _, user, err = store.RecordTransaction(ctx, "1001", -1000); err != nil || user.Balance != 0 {
		t.Errorf("draining withdrawal = (%d, %v), want (0, nil)", user.Balance, err)
	}
	verifyStore(t, store)
}

func testRecordTransactionRejected(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 300))

	tests := []struct {
		name    string
		account bank.AccountNumber
		amount  int64
		want    error
	}{
		{"overdraft", "1001", -301, ledger.ErrInsufficientFunds},
		{"unknown account", "9999", 10, ledger.ErrNotFound},
		{"zero", "1001", 0, ledger.ErrInvalidAmount},
		{"beyond maximum", "1001", bank.MaxAmount + 1, ledger.ErrInvalidAmount},
		{"balance limit", "1001", bank.MaxAmount, ledger.ErrBalanceLimit},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := store.RecordTransaction(ctx, test.account, test.amount)
			if !errors.Is(err, test.want) {
				t.Errorf("error = %v, want %v", err, test.want)
			}
		})
	}

	if balance := mustBalance(t, store, "1001"); balance != 300 {
		t.Errorf("balance = %d after rejected movements, want 300", balance)
	}
	history, _ := store.ListTransactions(ctx, "1001", 0)
	if len(history) != 1 {
		t.Errorf("rejected movements left %d history entries, want 1", len(history))
	}
}

func testTransfer(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 1000))
	mustCreate(t, store, NewUser("2002", 50))

	result, err := store.Transfer(ctx, "1001", "2002", 400)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if result.Debit.Amount != -400 || result.Debit.Kind != bank.KindTransferOut || result.Debit.Counterparty != "2002" {
		t.Errorf("debit leg = %+v", result.Debit)
	}
	if result.Credit.Amount != 400 || result.Credit.Kind != bank.KindTransferIn || result.Credit.Counterparty != "1001" {
		t.Errorf("credit leg = %+v", result.Credit)
	}
	if result.Source.Balance != 600 || result.Debit.Balance != 600 || result.Credit.Balance != 450 {
		t.Errorf("balances: source %d, debit %d, credit %d", result.Source.Balance, result.Debit.Balance, result.Credit.Balance)
	}
	if got := mustBalance(t, store, "2002"); got != 450 {
		t.Errorf("destination balance = %d, want 450", got)
	}

	// Lower-numbered destination exercises the other lock order.
	if _, err := store.Transfer(ctx, "2002", "1001", 450); err != nil {
		t.Fatalf("reverse Transfer: %v", err)
	}
	if got := mustBalance(t, store, "2002"); got != 0 {
		t.Errorf("balance after reverse transfer = %d, want 0", got)
	}
	verifyStore(t, store)
}

func testTransferRejected(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 100))
	mustCreate(t, store, NewUser("2002", 0))
	mustCreate(t, store, NewUser("3003", 0))
	if _, err := store.DeleteUser(ctx, "3003"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	tests := []struct {
		name     string
		from, to bank.AccountNumber
		amount   int64
		want     error
	}{
		{"insufficient", "1001", "2002", 101, ledger.ErrInsufficientFunds},
		{"same account", "1001", "1001", 10, ledger.ErrSameAccount},
		{"unknown destination", "1001", "9999", 10, ledger.ErrNotFound},
		{"unknown source", "9999", "1001", 10, ledger.ErrNotFound},
		{"deleted destination", "1001", "3003", 10, ledger.ErrNotFound},
		{"zero", "1001", "2002", 0, ledger.ErrInvalidAmount},
		{"negative", "1001", "2002", -10, ledger.ErrInvalidAmount},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := store.Transfer(ctx, test.from, test.to, test.amount); !errors.Is(err, test.want) {
				t.Errorf("error = %v, want %v", err, test.want)
			}
		})
	}

	if got := mustBalance(t, store, "1001"); got != 100 {
		t.Errorf("source balance = %d, want 100", got)
	}
	if got := mustBalance(t, store, "2002"); got != 0 {
		t.Errorf("destination balance = %d, want 0", got)
	}
	verifyStore(t, store)
}

func testListTransactions(t *testing.T, open Opener) {
	clk := clock.Fake(Epoch)
	clk.AutoAdvance(time.Second)
	store := open(t, clk)
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 0))
	for _, amount := range []int64{10, 20, 30, 40} {
		if _, _, err := store.RecordTransaction(ctx, "1001", amount); err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}
	}

	all, err := store.ListTransactions(ctx, "1001", 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d entries, want 4", len(all))
	}
	for index, want := range []int64{40, 30, 20, 10} {
		if all[index].Amount != want {
			t.Errorf("entry %d amount = %d, want %d (newest first)", index, all[index].Amount, want)
		}
	}

	recent, err := store.ListTransactions(ctx, "1001", 2)
	if err != nil {
		t.Fatalf("ListTransactions(limit 2): %v", err)
	}
	if len(recent) != 2 || recent[0].Amount != 40 || recent[1].Amount != 30 {
		t.Errorf("limited history = %+v", recent)
	}

	none, err := store.ListTransactions(ctx, "9999", 0)
	if err != nil || len(none) != 0 {
		t.Errorf("unknown account history = (%d entries, %v), want empty", len(none), err)
	}
}

func testListUsers(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	for _, account := range []bank.AccountNumber{"3003", "1001", "2002", "4004"} {
		mustCreate(t, store, NewUser(account, 0))
	}
	if _, err := store.DeleteUser(ctx, "4004"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	want := []bank.AccountNumber{"1001", "2002", "3003"}
	if len(users) != len(want) {
		t.Fatalf("got %d users, want %d", len(users), len(want))
	}
	for index, account := range want {
		if users[index].AccountNumber != account {
			t.Errorf("users[%d] = %s, want %s", index, users[index].AccountNumber, account)
		}
	}
}

func testConcurrentOppositeTransfers(t *testing.T, open Opener) {
	store := open(t, clock.Real())
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 1000))
	mustCreate(t, store, NewUser("2002", 1000))

	const rounds = 100
	var waitGroup sync.WaitGroup
	errs := make(chan error, 2*rounds)
	transfer := func(from, to bank.AccountNumber) {
		defer waitGroup.Done()
		for range rounds {
			_, err := store.Transfer(ctx, from, to, 7)
			if err != nil && !errors.Is(err, ledger.ErrInsufficientFunds) {
				errs <- err
				return
			}
		}
	}
	waitGroup.Add(2)
	go transfer("1001", "2002")
	go transfer("2002", "1001")

	done := make(chan struct{})
	go func() {
		waitGroup.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("opposite transfers did not finish: deadlock")
	}
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	first, second := mustBalance(t, store, "1001"), mustBalance(t, store, "2002")
	if first < 0 || second < 0 {
		t.Errorf("negative balance: %d, %d", first, second)
	}
	if first+second != 2000 {
		t.Errorf("sum = %d, want 2000", first+second)
	}
	verifyStore(t, store)
}

func testConcurrentConservation(t *testing.T, open Opener) {
	store := open(t, clock.Real())
	ctx := context.Background()
	accounts := []bank.AccountNumber{"1001", "2002", "3003", "4004"}
	for _, account := range accounts {
		mustCreate(t, store, NewUser(account, 500))
	}

	const workers = 8
	const operations = 40
	var waitGroup sync.WaitGroup
	var deposits sync.Mutex
	var netDeposits int64
	errs := make(chan error, workers)

	for worker := range workers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for step := range operations {
				from := accounts[(worker+step)%len(accounts)]
				to := accounts[(worker+step+1+step%2)%len(accounts)]
				if step%5 == 0 {
					amount := int64(step%3 - 1)
					if amount == 0 {
						amount = 3
					}
					_, _, err := store.RecordTransaction(ctx, from, amount)
					if err == nil {
						deposits.Lock()
						netDeposits += amount
						deposits.Unlock()
					} else if !errors.Is(err, ledger.ErrInsufficientFunds) {
						errs <- err
						return
					}
					continue
				}
				_, err := store.Transfer(ctx, from, to, int64(1+step%50))
				if err != nil && !errors.Is(err, ledger.ErrInsufficientFunds) {
					errs <- err
					return
				}
			}
		}()
	}
	waitGroup.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	var total int64
	for _, account := range accounts {
		balance := mustBalance(t, store, account)
		if balance < 0 {
			t.Errorf("account %s balance %d is negative", account, balance)
		}
		total += balance
	}
	if want := int64(500*len(accounts)) + netDeposits; total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
	verifyStore(t, store)
}

func testSnapshotRestore(t *testing.T, open Opener) {
	clk := clock.Fake(Epoch)
	clk.AutoAdvance(time.Second)
	source := open(t, clk)
	ctx := context.Background()
	mustCreate(t, source, NewUser("1001", 900))
	mustCreate(t, source, NewUser("2002", 0))
	mustCreate(t, source, NewUser("3003", 10))
	if _, err := source.Transfer(ctx, "1001", "2002", 300); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, err := source.DeleteUser(ctx, "3003"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	snapshot := verifyStore(t, source)
	if len(snapshot.Users) != 2 || len(snapshot.Retired) != 1 || len(snapshot.Transactions) != 4 {
		t.Fatalf("snapshot has %d users, %d retired, %d transactions; want 2, 1, 4",
			len(snapshot.Users), len(snapshot.Retired), len(snapshot.Transactions))
	}

	target := open(t, clk)
	mustCreate(t, target, NewUser("7007", 1))
	if err := target.Restore(ctx, snapshot); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if _, err := target.FindUser(ctx, "7007"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Restore did not replace existing contents: %v", err)
	}
	if got := mustBalance(t, target, "2002"); got != 300 {
		t.Errorf("restored balance = %d, want 300", got)
	}
	restored := verifyStore(t, target)
	if len(restored.Transactions) != len(snapshot.Transactions) {
		t.Fatalf("restored %d transactions, want %d", len(restored.Transactions), len(snapshot.Transactions))
	}
	for index := range restored.Transactions {
		if restored.Transactions[index].Digest != snapshot.Transactions[index].Digest {
			t.Errorf("transaction %d digest changed across restore", restored.Transactions[index].ID)
		}
	}
	if _, err := target.CreateUser(ctx, NewUser("3003", 0)); !errors.Is(err, ledger.ErrDuplicate) {
		t.Errorf("retired account reusable after restore: %v", err)
	}

	// New entries continue the restored chains and id sequence.
	transaction, _, err := target.RecordTransaction(ctx, "2002", 5)
	if err != nil {
		t.Fatalf("RecordTransaction after restore: %v", err)
	}
	if last := snapshot.Transactions[len(snapshot.Transactions)-1].ID; transaction.ID <= last {
		t.Errorf("new id %d does not follow restored id %d", transaction.ID, last)
	}
	verifyStore(t, target)
}

func testRestoreRejectsBrokenChain(t *testing.T, open Opener) {
	store := open(t, clock.Fake(Epoch))
	ctx := context.Background()
	mustCreate(t, store, NewUser("1001", 100))
	snapshot := verifyStore(t, store)

	snapshot.Transactions[0].Amount = 1_000_000
	snapshot.Transactions[0].Balance = 1_000_000
	snapshot.Users[0].Balance = 1_000_000
	if err := store.Restore(ctx, snapshot); err == nil {
		t.Fatal("Restore accepted a tampered snapshot")
	}
	if got := mustBalance(t, store, "1001"); got != 100 {
		t.Errorf("balance = %d after rejected restore, want 100", got)
	}
}
