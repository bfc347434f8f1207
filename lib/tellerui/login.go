// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/teller/lib/bank"
)

type loginState struct {
	form form
}

func newLoginState(account bank.AccountNumber) loginState {
	state := loginState{form: newForm(
		field{label: "Account", limit: 12},
		field{label: "Password", secret: true, limit: 128},
	)}
	if account != "" {
		state.form.inputs[0].SetValue(string(account))
		state.form.move(1)
	}
	return state
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return m, m.login.form.update(msg)
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Next):
		m.login.form.move(1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Previous):
		m.login.form.move(-1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Submit):
		if !m.login.form.last() {
			m.login.form.move(1)
			return m, nil
		}
		return m.submitLogin()
	}
	return m, m.login.form.update(msg)
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	account := bank.AccountNumber(m.login.form.value(0))
	password := m.login.form.inputs[1].Value()
	if account == "" || password == "" {
		m.setError(errors.New("enter an account number and password"))
		return m, nil
	}
	m.login.form.clearSecrets()
	m.busy = true
	m.setStatus("Signing in…")
	return m, m.initCmd(account, password)
}

func (m Model) handleInit(msg initMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	profile := msg.result.Profile
	m.setStatus("Signed in as " + profile.FirstName + " " + profile.LastName)
	if profile.Role == bank.RoleAdmin {
		m.screen = screenAdmin
		m.admin = newAdminState(profile, m.admin.slab)
		m.busy = true
		return m, m.databaseCmd()
	}
	m.screen = screenUser
	m.user = userState{
		profile: profile,
		balance: profile.Balance,
		history: msg.result.Transactions,
	}
	m.busy = true
	return m, m.refreshCmd()
}

func (m Model) viewLogin() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).Render("Teller")
	subtitle := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("Sign in to your account")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(1, 2).
		Render(strings.Join([]string{title, subtitle, "", m.login.form.view(m.theme, 40)}, "\n"))
	return lipgloss.Place(m.width, max(1, m.height-2), lipgloss.Center, lipgloss.Center, box)
}
