// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/passhash"
	"github.com/bureau-foundation/teller/lib/validation"
)

// ErrNotEmpty is returned by Apply when the store already holds users.
var ErrNotEmpty = errors.New("seed: store is not empty")

// File is the parsed content of a seed file.
type File struct {
	Users     []User     `json:"users"`
	Transfers []Transfer `json:"transfers,omitempty"`
}

// User is one seeded account. Role is "user" (the default) or "admin".
type User struct {
	AccountNumber bank.AccountNumber `json:"account_number"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Email         string             `json:"email"`
	Password      string             `json:"password"`
	Role          string             `json:"role,omitempty"`
	Balance       int64              `json:"balance,omitempty"`
}

// Transfer moves Amount between two seeded accounts after every user
// exists.
type Transfer struct {
	From   bank.AccountNumber `json:"from"`
	To     bank.AccountNumber `json:"to"`
	Amount int64              `json:"amount"`
}

// Parse strips JSONC comments and trailing commas from data and decodes
// it. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	var file File
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &file, nil
}

// ReadFile reads and parses a seed file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Validate checks every user against the field rules the server
// enforces and every transfer against the seeded accounts. All
// problems are reported together.
func (f *File) Validate() error {
	var errs []error
	accounts := make(map[bank.AccountNumber]bool, len(f.Users))
	emails := make(map[string]bool, len(f.Users))

	for index, user := range f.Users {
		prefix := fmt.Sprintf("users[%d]", index)
		fields := []validation.Field{
			validation.Text("account_number", string(user.AccountNumber), validation.AccountNumber),
			validation.Text("first_name", user.FirstName, validation.Name),
			validation.Text("last_name", user.LastName, validation.Name),
			validation.Text("email", user.Email, validation.Email),
			validation.Integer("balance", user.Balance, validation.Balance),
		}
		if !passhash.IsHash(user.Password) {
			fields = append(fields, validation.Text("password", user.Password, validation.Password))
		}
		if invalid := validation.First(fields); invalid != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, invalid))
		}
		if user.Role != "" && user.Role != bank.RoleUser && user.Role != bank.RoleAdmin {
			errs = append(errs, fmt.Errorf("%s: role %q must be %q or %q", prefix, user.Role, bank.RoleUser, bank.RoleAdmin))
		}
		if accounts[user.AccountNumber] {
			errs = append(errs, fmt.Errorf("%s: duplicate account number %s", prefix, user.AccountNumber))
		}
		if emails[user.Email] {
			errs = append(errs, fmt.Errorf("%s: duplicate email %s", prefix, user.Email))
		}
		accounts[user.AccountNumber] = true
		emails[user.Email] = true
	}

	for index, transfer := range f.Transfers {
		prefix := fmt.Sprintf("transfers[%d]", index)
		if !accounts[transfer.From] {
			errs = append(errs, fmt.Errorf("%s: from %s is not a seeded account", prefix, transfer.From))
		}
		if !accounts[transfer.To] {
			errs = append(errs, fmt.Errorf("%s: to %s is not a seeded account", prefix, transfer.To))
		}
		if transfer.From == transfer.To {
			errs = append(errs, fmt.Errorf("%s: from and to are the same account", prefix))
		}
		if invalid := validation.First([]validation.Field{
			validation.Integer("amount", transfer.Amount, validation.Amount),
		}); invalid != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, invalid))
		}
	}
	return errors.Join(errs...)
}

// Result counts what Apply stored.
type Result struct {
	Users     int
	Admins    int
	Transfers int
}

// Apply validates file and stores it. The store must hold no users.
// Plain-text passwords are hashed with hasher. A failure part way
// through leaves the users and transfers already stored.
func Apply(ctx context.Context, store ledger.Store, hasher *passhash.Hasher, file *File) (Result, error) {
	if err := file.Validate(); err != nil {
		return Result{}, err
	}
	existing, err := store.ListUsers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed: listing users: %w", err)
	}
	if len(existing) > 0 {
		return Result{}, fmt.Errorf("%w: %d users present", ErrNotEmpty, len(existing))
	}

	var result Result
	for _, user := range file.Users {
		hash := user.Password
		if !passhash.IsHash(hash) {
			hash, err = hasher.Hash(user.Password)
			if err != nil {
				return result, fmt.Errorf("seed: hashing password for %s: %w", user.AccountNumber, err)
			}
		}
		_, err := store.CreateUser(ctx, bank.User{
			AccountNumber: user.AccountNumber,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Email:         user.Email,
			PasswordHash:  hash,
			Admin:         user.Role == bank.RoleAdmin,
			Balance:       user.Balance,
		})
		if err != nil {
			return result, fmt.Errorf("seed: creating %s: %w", user.AccountNumber, err)
		}
		result.Users++
		if user.Role == bank.RoleAdmin {
			result.Admins++
		}
	}

	for index, transfer := range file.Transfers {
		if _, err := store.Transfer(ctx, transfer.From, transfer.To, transfer.Amount); err != nil {
			return result, fmt.Errorf("seed: transfers[%d]: %w", index, err)
		}
		result.Transfers++
	}
	return result, nil
}
