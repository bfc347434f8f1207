// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoTerminal is returned by Prompt when stdin is not a terminal.
var ErrNoTerminal = errors.New("secret: no terminal for an interactive prompt")

// ReadFromPath reads a secret from a file, or the first line of stdin
// when path is "-". Surrounding whitespace is trimmed.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return readLine(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return protectTrimmed(data)
}

func readLine(r io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return nil, errors.New("stdin is empty")
	}
	return protectTrimmed(scanner.Bytes())
}

func protectTrimmed(data []byte) (*Buffer, error) {
	defer Zero(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("secret is empty")
	}
	return NewFromBytes(trimmed)
}

// Prompt reads a secret from the terminal with echo disabled, writing
// label to stderr. With confirm set it asks twice and fails when the
// entries differ.
func Prompt(label string, confirm bool) (*Buffer, error) {
	descriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(descriptor) {
		return nil, ErrNoTerminal
	}
	first, err := promptOnce(descriptor, label+": ")
	if err != nil {
		return nil, err
	}
	if confirm {
		second, err := promptOnce(descriptor, "Confirm "+label+": ")
		if err != nil {
			Zero(first)
			return nil, err
		}
		match := len(first) == len(second) && bytes.Equal(first, second)
		Zero(second)
		if !match {
			Zero(first)
			return nil, errors.New("entries do not match")
		}
	}
	if len(first) == 0 {
		return nil, errors.New("secret is empty")
	}
	return NewFromBytes(first)
}

func promptOnce(descriptor int, label string) ([]byte, error) {
	fmt.Fprint(os.Stderr, label)
	value, err := term.ReadPassword(descriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading from terminal: %w", err)
	}
	return value, nil
}
