// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tellerui is the interactive terminal client for Teller,
// built on bubbletea.
//
// The program opens on a login form. A customer lands on a dashboard
// showing their balance and recent history, with a transfer form
// behind "t". An administrator lands on the user listing, which "/"
// narrows with fzf-style fuzzy matching over account number, name,
// email and role; enter loads the selected account's history.
//
// All server traffic goes through the [Bank] interface, which
// *service.Client satisfies. Calls run as tea.Cmds so the UI never
// blocks on the network.
package tellerui
