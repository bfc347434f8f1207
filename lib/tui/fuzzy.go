// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one candidate.
type FuzzyResult struct {
	Matched bool
	Score   int

	// Positions are the rune indices of matched characters, ascending.
	Positions []int
}

var initScheme sync.Once

// NewSlab returns scratch memory for FuzzyMatch. A slab must not be
// shared between goroutines.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores text against pattern with fzf's V2 algorithm.
// Matching is case-insensitive unless pattern contains an uppercase
// letter. An empty pattern matches everything with score zero.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	initScheme.Do(func() { algo.Init("default") })

	caseSensitive := false
	for _, character := range pattern {
		if character >= 'A' && character <= 'Z' {
			caseSensitive = true
			break
		}
	}
	if !caseSensitive {
		lowered := make([]rune, len(pattern))
		for index, character := range pattern {
			if character >= 'A' && character <= 'Z' {
				character += 'a' - 'A'
			}
			lowered[index] = character
		}
		pattern = lowered
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(caseSensitive, false, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}
	matched := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		matched.Positions = slices.Clone(*positions)
		slices.Sort(matched.Positions)
	}
	return matched
}
