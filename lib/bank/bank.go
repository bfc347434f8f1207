// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bank

import (
	"encoding/hex"
	"fmt"
	"time"
)

// MaxAmount is the largest balance or single movement Teller accepts:
// 10^15 minor units. Sums of two in-range values cannot overflow int64.
const MaxAmount int64 = 1_000_000_000_000_000

// AccountNumber identifies a user's account. It is assigned at
// creation and never changes.
type AccountNumber string

func (a AccountNumber) String() string { return string(a) }

// User is the stored account record. PasswordHash never leaves the
// server: every response carries a [Profile] instead.
type User struct {
	AccountNumber AccountNumber
	FirstName     string
	LastName      string
	Email         string
	PasswordHash  string
	Admin         bool
	Balance       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Role names used on the wire and in seed files.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role returns RoleAdmin or RoleUser.
func (u User) Role() string {
	if u.Admin {
		return RoleAdmin
	}
	return RoleUser
}

// Profile is the public projection of a User.
type Profile struct {
	AccountNumber AccountNumber `json:"account_number"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Email         string        `json:"email"`
	Role          string        `json:"role"`
	Balance       int64         `json:"balance"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Profile returns the user's public projection.
func (u User) Profile() Profile {
	return Profile{
		AccountNumber: u.AccountNumber,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Role:          u.Role(),
		Balance:       u.Balance,
		CreatedAt:     u.CreatedAt,
	}
}

// UserUpdate carries the optional fields of a profile mutation. Nil
// fields are left unchanged.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	Admin        *bool
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.PasswordHash == nil && u.Admin == nil
}

// Apply returns a copy of user with the update's fields applied.
func (u UserUpdate) Apply(user User) User {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Admin != nil {
		user.Admin = *u.Admin
	}
	return user
}

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindWithdrawal  TransactionKind = "withdrawal"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
)

// Digest is a 32-byte blake3 hash linking a transaction to the one
// before it on the same account. It marshals as lowercase hex.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d is the all-zero digest that anchors every
// account's chain.
func (d Digest) IsZero() bool { return d == Digest{} }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != len(d) {
		return fmt.Errorf("digest: want %d hex characters, got %d", 2*len(d), len(text))
	}
	_, err := hex.Decode(d[:], text)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	return nil
}

// Transaction is one append-only ledger entry. Amount is signed:
// negative for debits, positive for credits. Balance is the account
// balance immediately after the entry was applied. Counterparty is
// set for transfer legs only.
type Transaction struct {
	ID            int64           `json:"id"`
	AccountNumber AccountNumber   `json:"account_number"`
	Kind          TransactionKind `json:"kind"`
	Amount        int64           `json:"amount"`
	Counterparty  AccountNumber   `json:"counterparty,omitempty"`
	Balance       int64           `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
	Digest        Digest          `json:"digest"`
}

// KindForAmount returns the deposit/withdrawal kind for a single-account
// movement of the given sign.
func KindForAmount(amount int64) TransactionKind {
	if amount < 0 {
		return KindWithdrawal
	}
	return KindDeposit
}
