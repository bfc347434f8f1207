// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar draws a one-column scrollbar of the given height
// whose thumb marks the visible window within totalItems.
func RenderScrollbar(theme Theme, height, totalItems, visibleItems, scrollOffset int) string {
	if height <= 0 {
		return ""
	}
	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(theme.Accent)

	thumbSize, thumbOffset := height, 0
	if totalItems > visibleItems && totalItems > 0 {
		thumbSize = max(1, height*visibleItems/totalItems)
		if scrollable, track := totalItems-visibleItems, height-thumbSize; track > 0 {
			thumbOffset = min(scrollOffset*track/scrollable, track)
		}
	}

	lines := make([]string, height)
	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}
