// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/tui"
)

type screen int

const (
	screenLogin screen = iota
	screenUser
	screenAdmin
)

// DefaultHistoryLimit is how many transactions the dashboards load.
const DefaultHistoryLimit = 50

// Options configures New.
type Options struct {
	Theme tui.Theme
	Keys  KeyMap

	// HistoryLimit bounds loaded history. Zero means
	// DefaultHistoryLimit.
	HistoryLimit int

	// Account prefills the login form.
	Account bank.AccountNumber
}

// Model is the top-level bubbletea model.
type Model struct {
	ctx          context.Context
	bank         Bank
	theme        tui.Theme
	keys         KeyMap
	historyLimit int

	width  int
	height int

	screen  screen
	busy    bool
	status  string
	failure bool

	login loginState
	user  userState
	admin adminState
}

// New returns the initial model. ctx bounds every server call.
func New(ctx context.Context, client Bank, options Options) Model {
	if options.Theme == (tui.Theme{}) {
		options.Theme = tui.DefaultTheme
	}
	if len(options.Keys.Quit.Keys()) == 0 {
		options.Keys = DefaultKeyMap
	}
	if options.HistoryLimit <= 0 {
		options.HistoryLimit = DefaultHistoryLimit
	}
	model := Model{
		ctx:          ctx,
		bank:         client,
		theme:        options.Theme,
		keys:         options.Keys,
		historyLimit: options.HistoryLimit,
		width:        80,
		height:       24,
		login:        newLoginState(options.Account),
	}
	model.admin.slab = tui.NewSlab()
	return model
}

// Run starts the program on the terminal and blocks until it exits.
func Run(ctx context.Context, client Bank, options Options) error {
	program := tea.NewProgram(New(ctx, client, options), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}

	case initMsg:
		return m.handleInit(msg)
	case databaseMsg:
		return m.handleDatabase(msg)
	case refreshMsg:
		return m.handleRefresh(msg)
	case transferMsg:
		return m.handleTransfer(msg)
	case accountHistoryMsg:
		return m.handleAccountHistory(msg)
	case logoutMsg:
		return m.handleLogout(msg)
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenUser:
		return m.updateUser(msg)
	case screenAdmin:
		return m.updateAdmin(msg)
	}
	return m, nil
}

func (m Model) handleLogout(msg logoutMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	account := m.user.profile.AccountNumber
	if m.screen == screenAdmin {
		account = m.admin.profile.AccountNumber
	}
	m.user = userState{}
	m.admin = adminState{slab: m.admin.slab}
	m.login = newLoginState(account)
	m.screen = screenLogin
	if msg.err != nil {
		m.setError(msg.err)
	} else {
		m.setStatus("Logged out")
	}
	return m, textinput.Blink
}

func (m *Model) setStatus(text string) {
	m.status, m.failure = text, false
}

func (m *Model) setError(err error) {
	m.status, m.failure = errorText(err), true
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenUser:
		body = m.viewUser()
	case screenAdmin:
		body = m.viewAdmin()
	}

	lines := strings.Split(body, "\n")
	bodyHeight := max(1, m.height-2)
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	lines = lines[:bodyHeight]
	view := strings.Join(lines, "\n")

	if m.screen == screenUser && m.user.transferring {
		view = tui.Center(view, m.viewTransferModal(), m.width, bodyHeight)
	}
	return view + "\n" + m.viewStatus() + "\n" + m.viewHelp()
}
