// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui holds terminal UI primitives shared by Teller's
// bubbletea screens: the color theme, fzf-backed fuzzy matching,
// ANSI-aware overlay splicing, and a scrollbar renderer. Screens own
// their layout and data; this package only draws.
package tui
