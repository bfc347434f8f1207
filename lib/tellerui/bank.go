// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/protocol"
	"github.com/bureau-foundation/teller/lib/service"
)

// Bank is the subset of the client the UI uses.
type Bank interface {
	UserInit(ctx context.Context, account bank.AccountNumber, password string) (protocol.InitResult, error)
	Logout(ctx context.Context) error
	GetBalance(ctx context.Context, account bank.AccountNumber) (int64, error)
	GetTransactionsHistory(ctx context.Context, account bank.AccountNumber, limit int) ([]bank.Transaction, error)
	TransferAmount(ctx context.Context, request protocol.TransferAmount) (protocol.TransactionResult, error)
	GetDatabase(ctx context.Context) ([]bank.Profile, error)
}

var _ Bank = (*service.Client)(nil)

type initMsg struct {
	result protocol.InitResult
	err    error
}

type databaseMsg struct {
	users []bank.Profile
	err   error
}

type refreshMsg struct {
	balance int64
	history []bank.Transaction
	err     error
}

type transferMsg struct {
	request protocol.TransferAmount
	result  protocol.TransactionResult
	err     error
}

type accountHistoryMsg struct {
	account bank.AccountNumber
	history []bank.Transaction
	err     error
}

type logoutMsg struct {
	err error
}

func (m Model) initCmd(account bank.AccountNumber, password string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.bank.UserInit(m.ctx, account, password)
		return initMsg{result: result, err: err}
	}
}

func (m Model) databaseCmd() tea.Cmd {
	return func() tea.Msg {
		users, err := m.bank.GetDatabase(m.ctx)
		return databaseMsg{users: users, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	account := m.user.profile.AccountNumber
	return func() tea.Msg {
		balance, err := m.bank.GetBalance(m.ctx, account)
		if err != nil {
			return refreshMsg{err: err}
		}
		history, err := m.bank.GetTransactionsHistory(m.ctx, account, m.historyLimit)
		return refreshMsg{balance: balance, history: history, err: err}
	}
}

func (m Model) transferCmd(request protocol.TransferAmount) tea.Cmd {
	return func() tea.Msg {
		result, err := m.bank.TransferAmount(m.ctx, request)
		return transferMsg{request: request, result: result, err: err}
	}
}

func (m Model) accountHistoryCmd(account bank.AccountNumber) tea.Cmd {
	return func() tea.Msg {
		history, err := m.bank.GetTransactionsHistory(m.ctx, account, m.historyLimit)
		return accountHistoryMsg{account: account, history: history, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: m.bank.Logout(m.ctx)}
	}
}

// errorText is the message shown for err: the server's message for a
// rejected request, the error text otherwise.
func errorText(err error) string {
	var response *service.ResponseError
	if errors.As(err, &response) {
		if response.Field != "" {
			return response.Field + ": " + response.Message
		}
		return response.Message
	}
	return err.Error()
}
