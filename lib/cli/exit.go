// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"os"
)

// ExitError signals a non-zero exit without an extra error message.
// The command has already written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit terminates the process for err as returned by Execute: status 0
// for nil, the carried code for an ExitError, otherwise 1 after
// printing "program: error" to stderr.
func Exit(program string, err error) {
	if err == nil {
		os.Exit(0)
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		os.Exit(exitError.Code)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", program, err)
	os.Exit(1)
}
