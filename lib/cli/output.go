// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"text/tabwriter"
)

// WriteJSON writes value as indented JSON. A nil slice is written as [].
func WriteJSON(w io.Writer, value any) error {
	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Slice && reflected.IsNil() {
		value = reflect.MakeSlice(reflected.Type(), 0, 0).Interface()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// Table writes tab-separated rows as aligned columns.
type Table struct {
	writer *tabwriter.Writer
}

// NewTable starts a table on w with the given header.
func NewTable(w io.Writer, header ...string) *Table {
	table := &Table{writer: tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)}
	if len(header) > 0 {
		table.Row(toAny(header)...)
	}
	return table
}

// Row appends one row.
func (t *Table) Row(cells ...any) {
	for index, cell := range cells {
		if index > 0 {
			fmt.Fprint(t.writer, "\t")
		}
		fmt.Fprint(t.writer, cell)
	}
	fmt.Fprintln(t.writer)
}

// Flush writes the aligned table.
func (t *Table) Flush() error {
	return t.writer.Flush()
}

func toAny(values []string) []any {
	converted := make([]any, len(values))
	for index, value := range values {
		converted[index] = value
	}
	return converted
}
