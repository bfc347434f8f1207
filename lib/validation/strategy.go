// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"regexp"
	"strconv"

	"github.com/bureau-foundation/teller/lib/bank"
)

// Strategy validates one field's raw value.
type Strategy interface {
	// Validate reports whether raw satisfies the rule.
	Validate(raw string) bool

	// Rule describes the rule for error messages.
	Rule() string
}

// The concrete strategies. Each is a zero-size value; use the
// package-level instances.
var (
	AccountNumber Strategy = accountNumberStrategy{}
	Balance       Strategy = balanceStrategy{}
	Amount        Strategy = amountStrategy{}
	Email         Strategy = emailStrategy{}
	Name          Strategy = nameStrategy{}
	Password      Strategy = passwordStrategy{}
)

var accountNumberPattern = regexp.MustCompile(`^[1-9][0-9]{3,11}$`)

type accountNumberStrategy struct{}

func (accountNumberStrategy) Validate(raw string) bool {
	return accountNumberPattern.MatchString(raw)
}

func (accountNumberStrategy) Rule() string {
	return "account number must be 4 to 12 digits without a leading zero"
}

// parseMinor parses a canonical base-10 int64: optional leading '-',
// no '+', no leading zeros, no whitespace.
func parseMinor(raw string) (int64, bool) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(value, 10) != raw {
		return 0, false
	}
	return value, true
}

type balanceStrategy struct{}

func (balanceStrategy) Validate(raw string) bool {
	value, ok := parseMinor(raw)
	return ok && value >= 0 && value <= bank.MaxAmount
}

func (balanceStrategy) Rule() string {
	return "balance must be a non-negative whole number of minor units not above " +
		strconv.FormatInt(bank.MaxAmount, 10)
}

type amountStrategy struct{}

func (amountStrategy) Validate(raw string) bool {
	value, ok := parseMinor(raw)
	return ok && value != 0 && value >= -bank.MaxAmount && value <= bank.MaxAmount
}

func (amountStrategy) Rule() string {
	return "amount must be a non-zero whole number of minor units with magnitude not above " +
		strconv.FormatInt(bank.MaxAmount, 10)
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// maxEmailLength is the RFC 5321 path limit minus the angle brackets.
const maxEmailLength = 254

type emailStrategy struct{}

func (emailStrategy) Validate(raw string) bool {
	return len(raw) <= maxEmailLength && emailPattern.MatchString(raw)
}

func (emailStrategy) Rule() string {
	return "email must look like name@domain.tld"
}

var namePattern = regexp.MustCompile(`^[A-Za-z]+(?:[ '-][A-Za-z]+)*$`)

const maxNameLength = 64

type nameStrategy struct{}

func (nameStrategy) Validate(raw string) bool {
	return raw != "" && len(raw) <= maxNameLength && namePattern.MatchString(raw)
}

func (nameStrategy) Rule() string {
	return "name must be 1 to 64 letters, optionally joined by single spaces, hyphens, or apostrophes"
}

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

type passwordStrategy struct{}

func (passwordStrategy) Validate(raw string) bool {
	if len(raw) < minPasswordLength || len(raw) > maxPasswordLength {
		return false
	}
	var digit, lower, upper bool
	for _, character := range raw {
		switch {
		case character >= '0' && character <= '9':
			digit = true
		case character >= 'a' && character <= 'z':
			lower = true
		case character >= 'A' && character <= 'Z':
			upper = true
		}
	}
	return digit && lower && upper
}

func (passwordStrategy) Rule() string {
	return "password must be 8 to 128 characters with at least one digit, one lowercase and one uppercase letter"
}
