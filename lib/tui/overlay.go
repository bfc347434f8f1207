// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces the region of view starting at (anchorX,
// anchorY) with overlayLines. Escape sequences on both sides of the
// overlay survive.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}
	viewLines := strings.Split(view, "\n")
	overlayWidth := 0
	for _, line := range overlayLines {
		overlayWidth = max(overlayWidth, ansi.StringWidth(line))
	}

	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}
		viewLine := viewLines[row]
		lineWidth := ansi.StringWidth(viewLine)

		var result strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(viewLine, anchorX, "")
			result.WriteString(prefix)
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				result.WriteString(strings.Repeat(" ", gap))
			}
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		if pad := overlayWidth - ansi.StringWidth(overlayLine); pad > 0 {
			result.WriteString(strings.Repeat(" ", pad))
		}
		result.WriteString("\x1b[0m")
		if suffixStart := anchorX + overlayWidth; suffixStart < lineWidth {
			result.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}
		viewLines[row] = result.String()
	}
	return strings.Join(viewLines, "\n")
}

// Center splices box into the middle of a width by height view.
func Center(view, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	boxWidth := lipgloss.Width(box)
	anchorX := max(0, (width-boxWidth)/2)
	anchorY := max(0, (height-len(boxLines))/2)
	return SpliceOverlay(view, boxLines, anchorX, anchorY)
}

// Highlight renders text with the runes at positions styled by match
// and the rest by base. Positions must be ascending.
func Highlight(text string, positions []int, base, match lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	var result strings.Builder
	next := 0
	var run []rune
	matching := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if matching {
			result.WriteString(match.Render(string(run)))
		} else {
			result.WriteString(base.Render(string(run)))
		}
		run = run[:0]
	}
	for index, character := range []rune(text) {
		isMatch := next < len(positions) && positions[next] == index
		if isMatch {
			next++
		}
		if isMatch != matching {
			flush()
			matching = isMatch
		}
		run = append(run, character)
	}
	flush()
	return result.String()
}
