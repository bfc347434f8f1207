// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "github.com/bureau-foundation/teller/lib/bank"

// Request is one of the payload structs in this package. The set is
// closed: the unexported method keeps other packages from adding
// kinds the dispatcher does not know.
type Request interface {
	Kind() Kind
	isRequest()
}

// Login authenticates the connection.
type Login struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Password      string             `cbor:"password"`
}

// GetAccountNumber resolves an email to its account number.
type GetAccountNumber struct {
	Email string `cbor:"email"`
}

// GetBalance reads an account's balance.
type GetBalance struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
}

// GetTransactionsHistory reads an account's history, newest first.
// Limit zero means all entries.
type GetTransactionsHistory struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Limit         int                `cbor:"limit,omitempty"`
}

// MakeTransaction deposits (positive) or withdraws (negative) on one
// account.
type MakeTransaction struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Amount        int64              `cbor:"amount"`
}

// TransferAmount moves money between accounts. The destination is
// named by account number or, when that is empty, by email.
type TransferAmount struct {
	FromAccountNumber bank.AccountNumber `cbor:"from_account_number"`
	ToAccountNumber   bank.AccountNumber `cbor:"to_account_number,omitempty"`
	ToEmail           string             `cbor:"to_email,omitempty"`
	Amount            int64              `cbor:"amount"`
}

// GetDatabase lists every user.
type GetDatabase struct{}

// CreateNewUser registers an account. InitialBalance nil means zero.
type CreateNewUser struct {
	AccountNumber  bank.AccountNumber `cbor:"account_number"`
	FirstName      string             `cbor:"first_name"`
	LastName       string             `cbor:"last_name"`
	Email          string             `cbor:"email"`
	Password       string             `cbor:"password"`
	Admin          bool               `cbor:"admin,omitempty"`
	InitialBalance *int64             `cbor:"initial_balance,omitempty"`
}

// DeleteUser removes an account.
type DeleteUser struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
}

// UpdateUser changes the present fields of an account's profile.
type UpdateUser struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	FirstName     *string            `cbor:"first_name,omitempty"`
	LastName      *string            `cbor:"last_name,omitempty"`
	Email         *string            `cbor:"email,omitempty"`
	Admin         *bool              `cbor:"admin,omitempty"`
}

// UserInit authenticates like Login and returns the dashboard
// bootstrap: profile plus recent history.
type UserInit struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Password      string             `cbor:"password"`
}

// UpdateEmail changes an account's email. Password is the current
// password and is required when acting on one's own account.
type UpdateEmail struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Password      string             `cbor:"password,omitempty"`
	NewEmail      string             `cbor:"new_email"`
}

// UpdatePassword changes an account's password. Password is the
// current password and is required when acting on one's own account.
type UpdatePassword struct {
	AccountNumber bank.AccountNumber `cbor:"account_number"`
	Password      string             `cbor:"password,omitempty"`
	NewPassword   string             `cbor:"new_password"`
}

// Logout returns the connection to the anonymous state.
type Logout struct{}

func (Login) Kind() Kind                  { return KindLogin }
func (GetAccountNumber) Kind() Kind       { return KindGetAccountNumber }
func (GetBalance) Kind() Kind             { return KindGetBalance }
func (GetTransactionsHistory) Kind() Kind { return KindGetTransactionsHistory }
func (MakeTransaction) Kind() Kind        { return KindMakeTransaction }
func (TransferAmount) Kind() Kind         { return KindTransferAmount }
func (GetDatabase) Kind() Kind            { return KindGetDatabase }
func (CreateNewUser) Kind() Kind          { return KindCreateNewUser }
func (DeleteUser) Kind() Kind             { return KindDeleteUser }
func (UpdateUser) Kind() Kind             { return KindUpdateUser }
func (UserInit) Kind() Kind               { return KindUserInit }
func (UpdateEmail) Kind() Kind            { return KindUpdateEmail }
func (UpdatePassword) Kind() Kind         { return KindUpdatePassword }
func (Logout) Kind() Kind                 { return KindLogout }

func (Login) isRequest()                  {}
func (GetAccountNumber) isRequest()       {}
func (GetBalance) isRequest()             {}
func (GetTransactionsHistory) isRequest() {}
func (MakeTransaction) isRequest()        {}
func (TransferAmount) isRequest()         {}
func (GetDatabase) isRequest()            {}
func (CreateNewUser) isRequest()          {}
func (DeleteUser) isRequest()             {}
func (UpdateUser) isRequest()             {}
func (UserInit) isRequest()               {}
func (UpdateEmail) isRequest()            {}
func (UpdatePassword) isRequest()         {}
func (Logout) isRequest()                 {}
