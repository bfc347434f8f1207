// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import "github.com/bureau-foundation/teller/lib/bank"

// State is a connection's authentication state.
type State int

const (
	Anonymous State = iota
	AuthenticatedUser
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case AuthenticatedUser:
		return "user"
	case AuthenticatedAdmin:
		return "admin"
	}
	return "invalid"
}

// Session is the authentication state carried by one connection.
// Privileges are fixed at login: a role change made by an admin takes
// effect the next time the affected user logs in.
type Session struct {
	State   State
	Account bank.AccountNumber
}

// Authenticated reports whether the session has logged in.
func (s Session) Authenticated() bool { return s.State != Anonymous }

// Admin reports whether the session has admin rights.
func (s Session) Admin() bool { return s.State == AuthenticatedAdmin }

// Owns reports whether the session may act on account: its own
// account, or any account for an admin.
func (s Session) Owns(account bank.AccountNumber) bool {
	return s.Admin() || (s.Authenticated() && s.Account == account)
}

func sessionFor(user bank.User) Session {
	if user.Admin {
		return Session{State: AuthenticatedAdmin, Account: user.AccountNumber}
	}
	return Session{State: AuthenticatedUser, Account: user.AccountNumber}
}
