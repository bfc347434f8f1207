// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bank

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount renders minor units as a decimal string with two
// fractional digits: 123456 → "1234.56", -5 → "-0.05".
func FormatAmount(minor int64) string {
	sign := ""
	magnitude := uint64(minor)
	if minor < 0 {
		sign = "-"
		magnitude = uint64(-minor)
	}
	return fmt.Sprintf("%s%d.%02d", sign, magnitude/100, magnitude%100)
}

// ParseAmount parses a decimal amount with at most two fractional
// digits into minor units. "12" → 1200, "12.5" → 1250, "-0.05" → -5.
// Values whose magnitude exceeds MaxAmount are rejected.
func ParseAmount(text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	negative := false
	switch trimmed[0] {
	case '-':
		negative = true
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}

	whole, fraction, hasFraction := strings.Cut(trimmed, ".")
	if whole == "" && (!hasFraction || fraction == "") {
		return 0, fmt.Errorf("amount %q has no digits", text)
	}
	if hasFraction && (len(fraction) == 0 || len(fraction) > 2) {
		return 0, fmt.Errorf("amount %q must have one or two fractional digits", text)
	}
	for len(fraction) < 2 {
		fraction += "0"
	}
	if whole == "" {
		whole = "0"
	}

	for _, part := range []string{whole, fraction} {
		for _, character := range part {
			if character < '0' || character > '9' {
				return 0, fmt.Errorf("amount %q is not a decimal number", text)
			}
		}
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > MaxAmount/100 {
		return 0, fmt.Errorf("amount %q is out of range", text)
	}
	cents, _ := strconv.ParseInt(fraction, 10, 64)

	minor := units*100 + cents
	if minor > MaxAmount {
		return 0, fmt.Errorf("amount %q is out of range", text)
	}
	if negative {
		minor = -minor
	}
	return minor, nil
}
