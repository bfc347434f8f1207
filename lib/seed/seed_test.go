// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/ledger/ledgertest"
	"github.com/bureau-foundation/teller/lib/ledger/memstore"
	"github.com/bureau-foundation/teller/lib/passhash"
)

const sample = `{
  // operators first
  "users": [
    {"account_number": "9000", "first_name": "Ada", "last_name": "Byron",
     "email": "ada@example.com", "password": "Adm1nPassword", "role": "admin"},
    {"account_number": "1001", "first_name": "Sam", "last_name": "O'Hill",
     "email": "sam@example.com", "password": "Passw0rdSam", "balance": 50000},
    /* a customer with a pre-hashed password */
    {"account_number": "1002", "first_name": "Kim", "last_name": "Lee",
     "email": "kim@example.com",
     "password": "$2a$10$abcdefghijklmnopqrstuuWbTEZmQWx6Hps3e7pDxR0d9U8mW7qC2",
     "balance": 100},
  ],
  "transfers": [
    {"from": "1001", "to": "1002", "amount": 1250},
  ],
}`

func newStore() *memstore.Store {
	return memstore.New(clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func newHasher(t *testing.T) *passhash.Hasher {
	t.Helper()
	hasher, err := passhash.New(passhash.InsecureTestParams)
	if err != nil {
		t.Fatalf("passhash.New: %v", err)
	}
	return hasher
}

func TestParseAndApply(t *testing.T) {
	t.Parallel()
	file, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.Users) != 3 || len(file.Transfers) != 1 {
		t.Fatalf("parsed %d users and %d transfers", len(file.Users), len(file.Transfers))
	}

	ctx := context.Background()
	store := newStore()
	hasher := newHasher(t)
	result, err := Apply(ctx, store, hasher, file)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result != (Result{Users: 3, Admins: 1, Transfers: 1}) {
		t.Errorf("result = %+v", result)
	}

	admin, err := store.FindUser(ctx, "9000")
	if err != nil {
		t.Fatalf("FindUser(9000): %v", err)
	}
	if !admin.Admin {
		t.Error("9000 is not an admin")
	}
	verified, err := hasher.Verify("Adm1nPassword", admin.PasswordHash)
	if err != nil || !verified.Match {
		t.Errorf("stored hash does not verify the seeded password: %+v, %v", verified, err)
	}

	customer, err := store.FindUser(ctx, "1002")
	if err != nil {
		t.Fatalf("FindUser(1002): %v", err)
	}
	if !strings.HasPrefix(customer.PasswordHash, "$2a$") {
		t.Errorf("pre-hashed password was rehashed: %q", customer.PasswordHash)
	}
	if customer.Balance != 1350 {
		t.Errorf("1002 balance = %d, want 1350", customer.Balance)
	}
}

func TestApplyRefusesPopulatedStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore()
	if _, err := store.CreateUser(ctx, ledgertest.NewUser("4242", 0)); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	file, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Apply(ctx, store, newHasher(t), file); !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("Apply: err = %v, want ErrNotEmpty", err)
	}
}

func TestApplyStopsAtFailingTransfer(t *testing.T) {
	t.Parallel()
	file := &File{
		Users: []User{
			{AccountNumber: "1001", FirstName: "Sam", LastName: "Hill", Email: "sam@example.com", Password: "Passw0rdSam", Balance: 10},
			{AccountNumber: "1002", FirstName: "Kim", LastName: "Lee", Email: "kim@example.com", Password: "Passw0rdKim"},
		},
		Transfers: []Transfer{{From: "1001", To: "1002", Amount: 500}},
	}
	result, err := Apply(context.Background(), newStore(), newHasher(t), file)
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("Apply: err = %v, want ErrInsufficientFunds", err)
	}
	if result.Users != 2 || result.Transfers != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()
	file := &File{
		Users: []User{
			{AccountNumber: "0123", FirstName: "Sam", LastName: "Hill", Email: "sam@example.com", Password: "Passw0rdSam"},
			{AccountNumber: "1002", FirstName: "Kim", LastName: "Lee", Email: "sam@example.com", Password: "weak"},
			{AccountNumber: "1002", FirstName: "Al", LastName: "Bo", Email: "al@example.com", Password: "Passw0rdAl1", Role: "root"},
		},
		Transfers: []Transfer{
			{From: "1002", To: "7777", Amount: 5},
			{From: "1002", To: "1002", Amount: 0},
		},
	}
	err := file.Validate()
	if err == nil {
		t.Fatal("Validate accepted a broken file")
	}
	for _, want := range []string{
		"users[0]: invalid account_number",
		"users[1]: invalid password",
		"users[1]: duplicate email",
		"users[2]: role \"root\"",
		"users[2]: duplicate account number 1002",
		"transfers[0]: to 7777 is not a seeded account",
		"transfers[1]: from and to are the same account",
		"transfers[1]: invalid amount",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	if _, err := Parse([]byte(`{"users": [], "accounts": []}`)); err == nil {
		t.Fatal("Parse accepted an unknown field")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "seed.jsonc")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	file, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if file.Users[1].LastName != "O'Hill" {
		t.Errorf("last name = %q", file.Users[1].LastName)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("ReadFile of a missing file succeeded")
	}
}

func TestGenerateIsValidAndApplies(t *testing.T) {
	t.Parallel()
	options := GenerateOptions{Admins: 2, Users: 12, Transfers: 40, Seed: 7}
	file := Generate(options)
	if err := file.Validate(); err != nil {
		t.Fatalf("generated file is invalid: %v", err)
	}
	if len(file.Users) != 14 {
		t.Fatalf("generated %d users, want 14", len(file.Users))
	}
	if len(file.Transfers) == 0 {
		t.Fatal("generated no transfers")
	}

	again := Generate(options)
	if again.Users[5].Email != file.Users[5].Email || again.Transfers[0] != file.Transfers[0] {
		t.Error("generation with the same seed differs")
	}

	ctx := context.Background()
	store := newStore()
	result, err := Apply(ctx, store, newHasher(t), file)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Admins != 2 || result.Transfers != len(file.Transfers) {
		t.Errorf("result = %+v", result)
	}

	var opening, total int64
	for _, user := range file.Users {
		opening += user.Balance
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	for _, user := range users {
		total += user.Balance
	}
	if total != opening {
		t.Errorf("total balance %d after transfers, want %d", total, opening)
	}
}

func TestGenerateWithoutCustomers(t *testing.T) {
	t.Parallel()
	file := Generate(GenerateOptions{Admins: 1, Transfers: 5})
	if len(file.Users) != 1 || file.Users[0].Role != bank.RoleAdmin || len(file.Transfers) != 0 {
		t.Errorf("file = %+v", file)
	}
}
