// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"strconv"
)

// Field pairs a named raw value with the strategy that must accept it.
type Field struct {
	Name     string
	Value    string
	Strategy Strategy
}

// Text is a convenience constructor for string-valued fields.
func Text(name, value string, strategy Strategy) Field {
	return Field{Name: name, Value: value, Strategy: strategy}
}

// Integer is a convenience constructor for int64-valued fields.
func Integer(name string, value int64, strategy Strategy) Field {
	return Field{Name: name, Value: strconv.FormatInt(value, 10), Strategy: strategy}
}

// Error names the field that failed and the rule it violated.
type Error struct {
	Field string
	Rule  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Rule)
}

// First validates fields in order and returns an *Error for the first
// one its strategy rejects, or nil if all pass.
func First(fields []Field) *Error {
	for _, field := range fields {
		if !field.Strategy.Validate(field.Value) {
			return &Error{Field: field.Name, Rule: field.Strategy.Rule()}
		}
	}
	return nil
}
