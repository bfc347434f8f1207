// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/tui"
)

type adminRow struct {
	profile   bank.Profile
	text      string
	positions []int
	score     int
}

type adminState struct {
	profile bank.Profile
	users   []bank.Profile
	rows    []adminRow
	cursor  int
	offset  int

	filter    textinput.Model
	filtering bool

	selected bank.AccountNumber
	history  []bank.Transaction

	slab *util.Slab
}

func newAdminState(profile bank.Profile, slab *util.Slab) adminState {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "account, name, email or role"
	return adminState{profile: profile, filter: filter, slab: slab}
}

// rowText is the searchable, displayed form of a profile. Match
// positions index into it directly.
func rowText(profile bank.Profile) string {
	return fmt.Sprintf("%-12s  %-28s  %-32s  %-5s",
		profile.AccountNumber,
		ansi.Truncate(profile.FirstName+" "+profile.LastName, 28, "…"),
		ansi.Truncate(profile.Email, 32, "…"),
		profile.Role)
}

// applyFilter rebuilds the visible rows. With a pattern, rows are
// ordered by descending match score, ties by account number.
func (state *adminState) applyFilter() {
	pattern := []rune(strings.TrimSpace(state.filter.Value()))
	state.rows = state.rows[:0]
	for _, profile := range state.users {
		text := rowText(profile)
		result := tui.FuzzyMatch(text, pattern, state.slab)
		if !result.Matched {
			continue
		}
		state.rows = append(state.rows, adminRow{profile: profile, text: text, positions: result.Positions, score: result.Score})
	}
	slices.SortStableFunc(state.rows, func(a, b adminRow) int {
		if order := cmp.Compare(b.score, a.score); order != 0 {
			return order
		}
		return cmp.Compare(a.profile.AccountNumber, b.profile.AccountNumber)
	})
	state.cursor = min(state.cursor, max(0, len(state.rows)-1))
	state.offset = min(state.offset, state.cursor)
}

func (m Model) updateAdmin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if m.admin.filtering {
		if !isKey {
			var cmd tea.Cmd
			m.admin.filter, cmd = m.admin.filter.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(keyMsg, m.keys.Cancel):
			m.admin.filtering = false
			m.admin.filter.Blur()
			m.admin.filter.SetValue("")
			m.admin.applyFilter()
			return m, nil
		case key.Matches(keyMsg, m.keys.Submit):
			m.admin.filtering = false
			m.admin.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.admin.filter, cmd = m.admin.filter.Update(msg)
		m.admin.applyFilter()
		return m, cmd
	}
	if !isKey {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		m.admin.cursor = max(0, m.admin.cursor-1)
	case key.Matches(keyMsg, m.keys.Down):
		m.admin.cursor = min(m.admin.cursor+1, max(0, len(m.admin.rows)-1))
	case key.Matches(keyMsg, m.keys.Filter):
		m.admin.filtering = true
		return m, m.admin.filter.Focus()
	case key.Matches(keyMsg, m.keys.Cancel):
		if m.admin.filter.Value() != "" {
			m.admin.filter.SetValue("")
			m.admin.applyFilter()
		}
	case key.Matches(keyMsg, m.keys.Submit):
		if len(m.admin.rows) > 0 && !m.busy {
			m.busy = true
			return m, m.accountHistoryCmd(m.admin.rows[m.admin.cursor].profile.AccountNumber)
		}
	case key.Matches(keyMsg, m.keys.Refresh):
		if !m.busy {
			m.busy = true
			return m, m.databaseCmd()
		}
	case key.Matches(keyMsg, m.keys.Logout):
		if !m.busy {
			m.busy = true
			return m, m.logoutCmd()
		}
	}

	rows := m.listRows()
	if m.admin.cursor < m.admin.offset {
		m.admin.offset = m.admin.cursor
	} else if m.admin.cursor >= m.admin.offset+rows {
		m.admin.offset = m.admin.cursor - rows + 1
	}
	return m, nil
}

func (m Model) handleDatabase(msg databaseMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.admin.users = msg.users
	m.admin.applyFilter()
	return m, nil
}

func (m Model) handleAccountHistory(msg accountHistoryMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.admin.selected = msg.account
	m.admin.history = msg.history
	m.setStatus(fmt.Sprintf("%d transactions for %s", len(msg.history), msg.account))
	return m, nil
}

// listRows is the height of the user listing: half the body.
func (m Model) listRows() int {
	return max(1, (m.height-2-4)/2)
}

func (m Model) viewAdmin() string {
	header := m.viewHeader(m.admin.profile)

	filterLine := lipgloss.NewStyle().Foreground(m.theme.FaintText).
		Render(fmt.Sprintf("%d of %d users  (/ to filter)", len(m.admin.rows), len(m.admin.users)))
	if m.admin.filtering || m.admin.filter.Value() != "" {
		filterLine = m.admin.filter.View()
	}

	rows := m.listRows()
	base := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	selected := lipgloss.NewStyle().Foreground(m.theme.SelectedForeground).Background(m.theme.SelectedBackground)
	match := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	balanceStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	var listing []string
	end := min(len(m.admin.rows), m.admin.offset+rows)
	for index := m.admin.offset; index < end; index++ {
		row := m.admin.rows[index]
		style := base
		if index == m.admin.cursor {
			style = selected
		}
		line := tui.Highlight(row.text, row.positions, style, match.Background(style.GetBackground())) +
			"  " + balanceStyle.Render(fmt.Sprintf("%14s", bank.FormatAmount(row.profile.Balance)))
		listing = append(listing, ansi.Truncate(line, max(1, m.width-2), "…"))
	}
	for len(listing) < rows {
		listing = append(listing, "")
	}
	scrollbar := tui.RenderScrollbar(m.theme, rows, len(m.admin.rows), rows, m.admin.offset)
	list := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(listing, "\n"), " ", scrollbar)

	detailTitle := "Select a user and press enter to load history"
	if m.admin.selected != "" {
		detailTitle = "History for " + string(m.admin.selected)
	}
	detail := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(detailTitle)
	historyRows := max(1, m.height-2-4-rows-2)
	history := renderHistory(m.theme, m.admin.history, 0, historyRows, m.width)

	return strings.Join([]string{header, filterLine, list, "", detail, historyColumns(m.theme), history}, "\n")
}
