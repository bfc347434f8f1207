// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/tui"
)

const historyTimeLayout = "2006-01-02 15:04"

func historyColumns(theme tui.Theme) string {
	return lipgloss.NewStyle().Foreground(theme.HelpText).Render(
		fmt.Sprintf("%-16s  %-12s  %14s  %-12s  %14s", "TIME", "KIND", "AMOUNT", "COUNTERPARTY", "BALANCE"))
}

// renderHistory draws rows lines of history starting at offset with
// a scrollbar on the right.
func renderHistory(theme tui.Theme, history []bank.Transaction, offset, rows, width int) string {
	if len(history) == 0 {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("No transactions yet")
	}
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)
	lines := make([]string, 0, rows)
	end := min(len(history), offset+rows)
	for _, transaction := range history[offset:end] {
		amount := lipgloss.NewStyle().Foreground(theme.AmountColor(transaction.Amount)).
			Render(fmt.Sprintf("%14s", signedAmount(transaction.Amount)))
		line := normal.Render(fmt.Sprintf("%-16s  %-12s  ",
			transaction.Timestamp.Local().Format(historyTimeLayout), transaction.Kind)) +
			amount +
			normal.Render(fmt.Sprintf("  %-12s  %14s", transaction.Counterparty, bank.FormatAmount(transaction.Balance)))
		lines = append(lines, ansi.Truncate(line, max(1, width-2), "…"))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	scrollbar := tui.RenderScrollbar(theme, rows, len(history), rows, offset)
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(lines, "\n"), " ", scrollbar)
}

func signedAmount(amount int64) string {
	if amount > 0 {
		return "+" + bank.FormatAmount(amount)
	}
	return bank.FormatAmount(amount)
}

func (m Model) viewHeader(profile bank.Profile) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).Render("Teller")
	who := lipgloss.NewStyle().Foreground(m.theme.NormalText).
		Render(fmt.Sprintf("%s %s (%s)", profile.FirstName, profile.LastName, profile.AccountNumber))
	badge := lipgloss.NewStyle().Foreground(m.theme.RoleColor(profile.Role)).Render("[" + profile.Role + "]")
	line := title + "  " + who + "  " + badge
	rule := lipgloss.NewStyle().Foreground(m.theme.BorderColor).Render(strings.Repeat("─", max(1, m.width)))
	return line + "\n" + rule
}

func (m Model) viewStatus() string {
	text := m.status
	if m.busy && !strings.HasSuffix(text, "…") {
		text = strings.TrimSpace(text + " …")
	}
	color := m.theme.FaintText
	if m.failure {
		color = m.theme.ErrorText
	}
	return ansi.Truncate(lipgloss.NewStyle().Foreground(color).Render(text), max(1, m.width), "…")
}

func (m Model) viewHelp() string {
	var bindings []key.Binding
	switch {
	case m.screen == screenLogin:
		bindings = []key.Binding{m.keys.Next, m.keys.Submit, key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "quit"))}
	case m.screen == screenUser && m.user.transferring:
		bindings = []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Cancel}
	case m.screen == screenUser:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Transfer, m.keys.Refresh, m.keys.Logout, m.keys.Quit}
	case m.admin.filtering:
		bindings = []key.Binding{m.keys.Submit, key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "clear filter"))}
	default:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Filter,
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "history")),
			m.keys.Refresh, m.keys.Logout, m.keys.Quit}
	}

	keyStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	descriptionStyle := lipgloss.NewStyle().Foreground(m.theme.HelpText)
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, keyStyle.Render(help.Key)+" "+descriptionStyle.Render(help.Desc))
	}
	return ansi.Truncate(strings.Join(parts, "  "), max(1, m.width), "…")
}
