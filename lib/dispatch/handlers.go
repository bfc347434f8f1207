// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/protocol"
)

// authenticate checks credentials. Unknown accounts cost one decoy
// verification so timing does not reveal which accounts exist.
func (d *Dispatcher) authenticate(ctx context.Context, account bank.AccountNumber, password string) (bank.User, error) {
	user, err := d.store.FindUser(ctx, account)
	if errors.Is(err, ledger.ErrNotFound) {
		d.hasher.VerifyDecoy(password)
		return bank.User{}, fail(MessageInvalidCredentials)
	}
	if err != nil {
		return bank.User{}, err
	}
	if err := d.checkPassword(ctx, user, password); err != nil {
		return bank.User{}, err
	}
	return user, nil
}

// checkPassword verifies password against user's stored hash and
// upgrades legacy hashes in place.
func (d *Dispatcher) checkPassword(ctx context.Context, user bank.User, password string) error {
	result, err := d.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		d.logger.Error("stored password hash unusable",
			"account", user.AccountNumber,
			"error", err,
		)
		return fail(MessageInvalidCredentials)
	}
	if !result.Match {
		return fail(MessageInvalidCredentials)
	}
	if result.NeedsRehash {
		d.rehash(ctx, user.AccountNumber, password)
	}
	return nil
}

// rehash replaces a legacy hash. Failure only delays the upgrade to
// the next login, so it is logged and not returned.
func (d *Dispatcher) rehash(ctx context.Context, account bank.AccountNumber, password string) {
	hash, err := d.hasher.Hash(password)
	if err == nil {
		_, err = d.store.UpdateUser(ctx, account, bank.UserUpdate{PasswordHash: &hash})
	}
	if err != nil {
		d.logger.Warn("password rehash failed", "account", account, "error", err)
		return
	}
	d.logger.Info("password hash upgraded", "account", account)
}

func (d *Dispatcher) login(ctx context.Context, request protocol.Login, _ Session) (any, Session, error) {
	user, err := d.authenticate(ctx, request.AccountNumber, request.Password)
	if err != nil {
		return nil, Session{}, err
	}
	d.logger.Info("login", "account", user.AccountNumber, "role", user.Role())
	return user.Profile(), sessionFor(user), nil
}

func (d *Dispatcher) userInit(ctx context.Context, request protocol.UserInit, _ Session) (any, Session, error) {
	user, err := d.authenticate(ctx, request.AccountNumber, request.Password)
	if err != nil {
		return nil, Session{}, err
	}
	history, err := d.store.ListTransactions(ctx, user.AccountNumber, d.initHistory)
	if err != nil {
		return nil, Session{}, fmt.Errorf("loading dashboard history: %w", err)
	}
	d.logger.Info("login", "account", user.AccountNumber, "role", user.Role(), "init", true)
	return protocol.InitResult{Profile: user.Profile(), Transactions: history}, sessionFor(user), nil
}

func (d *Dispatcher) logout(_ context.Context, _ protocol.Logout, session Session) (any, Session, error) {
	d.logger.Info("logout", "account", session.Account)
	return nil, Session{}, nil
}

// getAccountNumber answers "not authorized" both for another user's
// email and for an unknown one, unless the caller is an admin.
func (d *Dispatcher) getAccountNumber(ctx context.Context, request protocol.GetAccountNumber, session Session) (any, Session, error) {
	user, err := d.store.FindUserByEmail(ctx, request.Email)
	if errors.Is(err, ledger.ErrNotFound) && !session.Admin() {
		return nil, session, fail(MessageNotAuthorized)
	}
	if err != nil {
		return nil, session, err
	}
	if !session.Owns(user.AccountNumber) {
		return nil, session, fail(MessageNotAuthorized)
	}
	return protocol.AccountNumberResult{AccountNumber: user.AccountNumber}, session, nil
}

func (d *Dispatcher) getBalance(ctx context.Context, request protocol.GetBalance, session Session) (any, Session, error) {
	user, err := d.store.FindUser(ctx, request.AccountNumber)
	if err != nil {
		return nil, session, err
	}
	return protocol.BalanceResult{AccountNumber: user.AccountNumber, Balance: user.Balance}, session, nil
}

func (d *Dispatcher) getTransactionsHistory(ctx context.Context, request protocol.GetTransactionsHistory, session Session) (any, Session, error) {
	if _, err := d.store.FindUser(ctx, request.AccountNumber); err != nil {
		return nil, session, err
	}
	history, err := d.store.ListTransactions(ctx, request.AccountNumber, request.Limit)
	if err != nil {
		return nil, session, err
	}
	return protocol.HistoryResult{AccountNumber: request.AccountNumber, Transactions: history}, session, nil
}

func (d *Dispatcher) makeTransaction(ctx context.Context, request protocol.MakeTransaction, session Session) (any, Session, error) {
	transaction, user, err := d.store.RecordTransaction(ctx, request.AccountNumber, request.Amount)
	if err != nil {
		return nil, session, err
	}
	return protocol.TransactionResult{Transaction: transaction, Balance: user.Balance}, session, nil
}

func (d *Dispatcher) transferAmount(ctx context.Context, request protocol.TransferAmount, session Session) (any, Session, error) {
	destination := request.ToAccountNumber
	if destination == "" {
		user, err := d.store.FindUserByEmail(ctx, request.ToEmail)
		if err != nil {
			return nil, session, err
		}
		destination = user.AccountNumber
	}
	result, err := d.store.Transfer(ctx, request.FromAccountNumber, destination, request.Amount)
	if err != nil {
		return nil, session, err
	}
	return protocol.TransactionResult{Transaction: result.Debit, Balance: result.Source.Balance}, session, nil
}

func (d *Dispatcher) getDatabase(ctx context.Context, _ protocol.GetDatabase, session Session) (any, Session, error) {
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, session, err
	}
	profiles := make([]bank.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	return protocol.DatabaseResult{Users: profiles}, session, nil
}

func (d *Dispatcher) createNewUser(ctx context.Context, request protocol.CreateNewUser, session Session) (any, Session, error) {
	hash, err := d.hasher.Hash(request.Password)
	if err != nil {
		return nil, session, err
	}
	var balance int64
	if request.InitialBalance != nil {
		balance = *request.InitialBalance
	}
	user, err := d.store.CreateUser(ctx, bank.User{
		AccountNumber: request.AccountNumber,
		FirstName:     request.FirstName,
		LastName:      request.LastName,
		Email:         request.Email,
		PasswordHash:  hash,
		Admin:         request.Admin,
		Balance:       balance,
	})
	if err != nil {
		return nil, session, err
	}
	d.logger.Info("user created", "account", user.AccountNumber, "role", user.Role(), "by", session.Account)
	return user.Profile(), session, nil
}

func (d *Dispatcher) deleteUser(ctx context.Context, request protocol.DeleteUser, session Session) (any, Session, error) {
	if request.AccountNumber == session.Account {
		return nil, session, fail(MessageSelfDelete)
	}
	removed, err := d.store.DeleteUser(ctx, request.AccountNumber)
	if err != nil {
		return nil, session, err
	}
	d.logger.Info("user deleted", "account", removed.AccountNumber, "by", session.Account)
	return removed.Profile(), session, nil
}

func (d *Dispatcher) updateUser(ctx context.Context, request protocol.UpdateUser, session Session) (any, Session, error) {
	update := bank.UserUpdate{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Email:     request.Email,
		Admin:     request.Admin,
	}
	if update.Empty() {
		return nil, session, fail(MessageNothingToUpdate)
	}
	if request.AccountNumber == session.Account && request.Admin != nil && !*request.Admin {
		return nil, session, fail(MessageSelfDemote)
	}
	user, err := d.store.UpdateUser(ctx, request.AccountNumber, update)
	if err != nil {
		return nil, session, err
	}
	d.logger.Info("user updated", "account", user.AccountNumber, "by", session.Account)
	return user.Profile(), session, nil
}

// requireCurrentPassword loads the target account and, when the caller
// acts on its own account, checks the current password.
func (d *Dispatcher) requireCurrentPassword(ctx context.Context, account bank.AccountNumber, password string, session Session) error {
	user, err := d.store.FindUser(ctx, account)
	if err != nil {
		return err
	}
	if session.Account != account {
		return nil
	}
	return d.checkPassword(ctx, user, password)
}

func (d *Dispatcher) updateEmail(ctx context.Context, request protocol.UpdateEmail, session Session) (any, Session, error) {
	if err := d.requireCurrentPassword(ctx, request.AccountNumber, request.Password, session); err != nil {
		return nil, session, err
	}
	user, err := d.store.UpdateUser(ctx, request.AccountNumber, bank.UserUpdate{Email: &request.NewEmail})
	if err != nil {
		return nil, session, err
	}
	return user.Profile(), session, nil
}

func (d *Dispatcher) updatePassword(ctx context.Context, request protocol.UpdatePassword, session Session) (any, Session, error) {
	if err := d.requireCurrentPassword(ctx, request.AccountNumber, request.Password, session); err != nil {
		return nil, session, err
	}
	hash, err := d.hasher.Hash(request.NewPassword)
	if err != nil {
		return nil, session, err
	}
	user, err := d.store.UpdateUser(ctx, request.AccountNumber, bank.UserUpdate{PasswordHash: &hash})
	if err != nil {
		return nil, session, err
	}
	d.logger.Info("password changed", "account", user.AccountNumber, "by", session.Account)
	return user.Profile(), session, nil
}
