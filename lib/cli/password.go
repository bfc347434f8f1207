// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/teller/lib/secret"
)

// ReadPassword returns a password from path ("-" for one line of
// stdin) or, when path is empty, from an echo-free terminal prompt.
// The caller must Close the buffer.
func ReadPassword(path, label string, confirm bool) (*secret.Buffer, error) {
	if path != "" {
		password, err := secret.ReadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", label, err)
		}
		return password, nil
	}
	password, err := secret.Prompt(label, confirm)
	if errors.Is(err, secret.ErrNoTerminal) {
		return nil, fmt.Errorf("%s: stdin is not a terminal; pass a password file", label)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", label, err)
	}
	return password, nil
}
