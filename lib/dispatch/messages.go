// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

// Failure messages. Clients may match on these strings.
const (
	MessageNotAuthorized        = "not authorized"
	MessageAlreadyAuthenticated = "already authenticated"
	MessageInvalidCredentials   = "invalid credentials"
	MessageUnknownAccount       = "unknown account"
	MessageDuplicate            = "duplicate"
	MessageInsufficientFunds    = "insufficient funds"
	MessageSameAccount          = "source and destination are the same account"
	MessageBalanceLimit         = "balance limit exceeded"
	MessageInvalidAmount        = "invalid amount"
	MessageSelfDelete           = "cannot delete own account"
	MessageSelfDemote           = "cannot remove own admin role"
	MessageNothingToUpdate      = "nothing to update"
	MessageInternal             = "internal error"
	MessageResponseTooLarge     = "response too large"
)
