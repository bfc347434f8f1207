// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/tellerui"
)

func (a *app) uiCommand() *cli.Command {
	var history int
	return &cli.Command{
		Name:    "ui",
		Summary: "Open the interactive dashboard",
		Description: "Full-screen terminal client. Customers see their balance, history and a " +
			"transfer form; administrators get a filterable list of every account.\n\n" +
			"--account prefills the sign-in form. The password is always typed in the form.",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("ui")
			flagSet.IntVar(&history, "history", tellerui.DefaultHistoryLimit, "transactions to load per account")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return errors.New("ui takes no arguments")
			}
			if !term.IsTerminal(0) || !term.IsTerminal(1) {
				return errors.New("ui needs an interactive terminal")
			}
			client, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			return tellerui.Run(ctx, client, tellerui.Options{
				HistoryLimit: history,
				Account:      bank.AccountNumber(a.account),
			})
		},
	}
}
