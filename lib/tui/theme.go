// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/teller/lib/bank"
)

// Theme is the color palette for Teller's terminal UI. Colors are
// ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Money movement.
	Credit lipgloss.Color
	Debit  lipgloss.Color

	// Role badges.
	AdminBadge lipgloss.Color
	UserBadge  lipgloss.Color

	Accent           lipgloss.Color
	ErrorText        lipgloss.Color
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	MatchHighlight lipgloss.Color

	ModalBackground lipgloss.Color
}

// AmountColor returns Credit for positive amounts and Debit otherwise.
func (theme Theme) AmountColor(amount int64) lipgloss.Color {
	if amount > 0 {
		return theme.Credit
	}
	return theme.Debit
}

// RoleColor returns the badge color for a role name.
func (theme Theme) RoleColor(role string) lipgloss.Color {
	if role == bank.RoleAdmin {
		return theme.AdminBadge
	}
	return theme.UserBadge
}

// DefaultTheme targets 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	Credit: lipgloss.Color("114"), // green
	Debit:  lipgloss.Color("203"), // soft red

	AdminBadge: lipgloss.Color("208"),
	UserBadge:  lipgloss.Color("75"),

	Accent:           lipgloss.Color("220"),
	ErrorText:        lipgloss.Color("196"),
	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	MatchHighlight: lipgloss.Color("58"),

	ModalBackground: lipgloss.Color("237"),
}
