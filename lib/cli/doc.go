// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command-line framework shared by tellerd and
// teller.
//
// A [Command] is a named node with an optional [pflag.FlagSet] factory,
// nested [Command.Subcommands], and a Run function. [Command.Execute]
// routes positional arguments to subcommands, parses flags, and prints
// structured help. Unknown commands and flags get a "did you mean"
// suggestion when a known name is within edit distance 3.
//
// [ExitError] reports a handled non-zero exit. [NewLogger] builds the
// slog logger both binaries use, and [ReadPassword] gets a password
// from a file, stdin, or an echo-free terminal prompt.
package cli
