// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/protocol"
)

type userState struct {
	profile bank.Profile
	balance int64
	history []bank.Transaction
	offset  int

	transferring bool
	transfer     form
}

func newTransferForm() form {
	return newForm(
		field{label: "To", limit: 254},
		field{label: "Amount", limit: 24},
	)
}

func (m Model) updateUser(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if m.user.transferring {
		if !isKey {
			return m, m.user.transfer.update(msg)
		}
		return m.updateTransfer(keyMsg)
	}
	if !isKey {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		m.user.offset = max(0, m.user.offset-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.user.offset = min(m.user.offset+1, max(0, len(m.user.history)-m.historyRows()))
	case key.Matches(keyMsg, m.keys.Transfer):
		m.user.transfer = newTransferForm()
		m.user.transferring = true
	case key.Matches(keyMsg, m.keys.Refresh):
		if !m.busy {
			m.busy = true
			return m, m.refreshCmd()
		}
	case key.Matches(keyMsg, m.keys.Logout):
		if !m.busy {
			m.busy = true
			return m, m.logoutCmd()
		}
	}
	return m, nil
}

func (m Model) updateTransfer(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	transfer := &m.user.transfer
	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.user.transferring = false
		return m, nil
	case key.Matches(keyMsg, m.keys.Next):
		transfer.move(1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Previous):
		transfer.move(-1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Submit):
		if !transfer.last() {
			transfer.move(1)
			return m, nil
		}
		request, err := m.transferRequest(transfer)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.busy = true
		m.setStatus("Sending…")
		return m, m.transferCmd(request)
	}
	return m, transfer.update(keyMsg)
}

// transferRequest builds the request from the form. A destination
// containing "@" is an email address.
func (m Model) transferRequest(transfer *form) (protocol.TransferAmount, error) {
	destination := transfer.value(0)
	if destination == "" {
		return protocol.TransferAmount{}, errors.New("enter a destination account number or email")
	}
	amount, err := bank.ParseAmount(transfer.value(1))
	if err != nil {
		return protocol.TransferAmount{}, err
	}
	if amount <= 0 {
		return protocol.TransferAmount{}, errors.New("amount must be positive")
	}
	request := protocol.TransferAmount{FromAccountNumber: m.user.profile.AccountNumber, Amount: amount}
	if strings.Contains(destination, "@") {
		request.ToEmail = destination
	} else {
		request.ToAccountNumber = bank.AccountNumber(destination)
	}
	return request, nil
}

func (m Model) handleTransfer(msg transferMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.user.transferring = false
	m.user.balance = msg.result.Balance
	destination := string(msg.request.ToAccountNumber)
	if destination == "" {
		destination = msg.request.ToEmail
	}
	m.setStatus(fmt.Sprintf("Sent %s to %s", bank.FormatAmount(msg.request.Amount), destination))
	m.busy = true
	return m, m.refreshCmd()
}

func (m Model) handleRefresh(msg refreshMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.user.balance = msg.balance
	m.user.history = msg.history
	m.user.offset = min(m.user.offset, max(0, len(m.user.history)-m.historyRows()))
	return m, nil
}

// historyRows is how many history lines fit under the dashboard header.
func (m Model) historyRows() int {
	return max(1, m.height-2-6)
}

func (m Model) viewUser() string {
	profile := m.user.profile
	header := m.viewHeader(profile)
	balanceLabel := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Balance")
	balance := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).
		Render(bank.FormatAmount(m.user.balance))
	section := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Recent activity")

	rows := m.historyRows()
	history := renderHistory(m.theme, m.user.history, m.user.offset, rows, m.width)
	return strings.Join([]string{header, "", balanceLabel + "  " + balance, "", section, historyColumns(m.theme), history}, "\n")
}

func (m Model) viewTransferModal() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).
		Render("Transfer from " + string(m.user.profile.AccountNumber))
	hint := lipgloss.NewStyle().Foreground(m.theme.FaintText).
		Render("Account number or email, amount like 12.50")
	transfer := m.user.transfer
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Accent).
		Background(m.theme.ModalBackground).
		Padding(0, 1).
		Render(strings.Join([]string{title, hint, "", transfer.view(m.theme, 44)}, "\n"))
}
