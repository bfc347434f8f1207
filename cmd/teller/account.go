// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/protocol"
)

func (a *app) loginCommand() *cli.Command {
	return &cli.Command{
		Name:    "login",
		Summary: "Check credentials and show the signed-in profile",
		Flags:   func() *pflag.FlagSet { return a.flags("login") },
		Run: func(ctx context.Context, args []string) error {
			client, profile, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			return a.printProfiles(profile)
		},
	}
}

func (a *app) balanceCommand() *cli.Command {
	return &cli.Command{
		Name:    "balance",
		Summary: "Show an account balance",
		Usage:   "teller balance [flags] [ACCOUNT]",
		Flags:   func() *pflag.FlagSet { return a.flags("balance") },
		Run: func(ctx context.Context, args []string) error {
			client, profile, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			account, err := target(args, profile)
			if err != nil {
				return err
			}
			balance, err := client.GetBalance(ctx, account)
			if err != nil {
				return err
			}
			if a.json {
				return cli.WriteJSON(a.stdout, balanceOutput{AccountNumber: account, Balance: balance})
			}
			fmt.Fprintln(a.stdout, bank.FormatAmount(balance))
			return nil
		},
	}
}

// balanceOutput is the JSON shape of the balance command.
type balanceOutput struct {
	AccountNumber bank.AccountNumber `json:"account_number"`
	Balance       int64              `json:"balance"`
}

func (a *app) historyCommand() *cli.Command {
	var limit int
	return &cli.Command{
		Name:    "history",
		Summary: "List an account's transactions, newest first",
		Usage:   "teller history [flags] [ACCOUNT]",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("history")
			flagSet.IntVarP(&limit, "limit", "n", 20, "entries to show (0 for all)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			client, profile, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			account, err := target(args, profile)
			if err != nil {
				return err
			}
			history, err := client.GetTransactionsHistory(ctx, account, limit)
			if err != nil {
				return err
			}
			return a.printHistory(history)
		},
	}
}

func (a *app) depositCommand() *cli.Command {
	return a.movementCommand("deposit", "Credit an account", 1)
}

func (a *app) withdrawCommand() *cli.Command {
	return a.movementCommand("withdraw", "Debit an account", -1)
}

// movementCommand builds deposit and withdraw, which differ only in
// the sign of the amount sent.
func (a *app) movementCommand(name, summary string, sign int64) *cli.Command {
	var account string
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "teller " + name + " [flags] AMOUNT",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags(name)
			flagSet.StringVar(&account, "to", "", "account to act on (default: the signed-in account)")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Move 12.50 on your own account", Command: "teller " + name + " 12.50"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one AMOUNT")
			}
			amount, err := parsePositiveAmount(args[0])
			if err != nil {
				return err
			}
			client, profile, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			destination := profile.AccountNumber
			if account != "" {
				destination = bank.AccountNumber(account)
			}
			result, err := client.MakeTransaction(ctx, destination, sign*amount)
			if err != nil {
				return err
			}
			return a.printTransaction(result)
		},
	}
}

func (a *app) transferCommand() *cli.Command {
	var from string
	return &cli.Command{
		Name:    "transfer",
		Summary: "Send money to another account",
		Description: "Transfer AMOUNT to DESTINATION, an account number or the email of its owner.\n\n" +
			"Administrators may move money out of any account with --from.",
		Usage: "teller transfer [flags] DESTINATION AMOUNT",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("transfer")
			flagSet.StringVar(&from, "from", "", "source account (default: the signed-in account)")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Pay by account number", Command: "teller transfer 482913 250"},
			{Description: "Pay by email", Command: "teller transfer merit@example.com 19.99"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return errors.New("expected DESTINATION and AMOUNT")
			}
			amount, err := parsePositiveAmount(args[1])
			if err != nil {
				return err
			}
			client, profile, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			request := transferRequest(profile.AccountNumber, from, args[0], amount)
			result, err := client.TransferAmount(ctx, request)
			if err != nil {
				return err
			}
			return a.printTransaction(result)
		},
	}
}

// transferRequest names the destination by email when it contains an
// at sign.
func transferRequest(signedIn bank.AccountNumber, from, destination string, amount int64) protocol.TransferAmount {
	request := protocol.TransferAmount{FromAccountNumber: signedIn, Amount: amount}
	if from != "" {
		request.FromAccountNumber = bank.AccountNumber(from)
	}
	if strings.Contains(destination, "@") {
		request.ToEmail = destination
	} else {
		request.ToAccountNumber = bank.AccountNumber(destination)
	}
	return request
}

func parsePositiveAmount(text string) (int64, error) {
	amount, err := bank.ParseAmount(text)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", text, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount %q must be positive", text)
	}
	return amount, nil
}

func (a *app) accountNumberCommand() *cli.Command {
	return &cli.Command{
		Name:    "account-number",
		Summary: "Look up the account owning an email",
		Usage:   "teller account-number [flags] EMAIL",
		Flags:   func() *pflag.FlagSet { return a.flags("account-number") },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one EMAIL")
			}
			client, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			account, err := client.GetAccountNumber(ctx, args[0])
			if err != nil {
				return err
			}
			if a.json {
				return cli.WriteJSON(a.stdout, map[string]bank.AccountNumber{"account_number": account})
			}
			fmt.Fprintln(a.stdout, account)
			return nil
		},
	}
}

func (a *app) updateEmailCommand() *cli.Command {
	var account string
	return &cli.Command{
		Name:    "update-email",
		Summary: "Change an account's email",
		Usage:   "teller update-email [flags] NEW_EMAIL",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("update-email")
			flagSet.StringVar(&account, "for", "", "account to change (administrators only)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one NEW_EMAIL")
			}
			password, err := a.readPassword()
			if err != nil {
				return err
			}
			defer password.Close()
			client, profile, err := a.connectWith(ctx, password.String())
			if err != nil {
				return err
			}
			defer client.Close()
			subject, current := profile.AccountNumber, password.String()
			if account != "" && bank.AccountNumber(account) != profile.AccountNumber {
				subject, current = bank.AccountNumber(account), ""
			}
			updated, err := client.UpdateEmail(ctx, subject, current, args[0])
			if err != nil {
				return err
			}
			return a.printProfiles(updated)
		},
	}
}

func (a *app) updatePasswordCommand() *cli.Command {
	var (
		account         string
		newPasswordFile string
	)
	return &cli.Command{
		Name:    "update-password",
		Summary: "Change an account's password",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("update-password")
			flagSet.StringVar(&account, "for", "", "account to change (administrators only)")
			flagSet.StringVar(&newPasswordFile, "new-password-file", "", "read the new password from a file (default: prompt twice)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if a.passwordFile == "-" && newPasswordFile == "-" {
				return errors.New("--password-file and --new-password-file cannot both be stdin")
			}
			password, err := a.readPassword()
			if err != nil {
				return err
			}
			defer password.Close()
			client, profile, err := a.connectWith(ctx, password.String())
			if err != nil {
				return err
			}
			defer client.Close()
			newPassword, err := cli.ReadPassword(newPasswordFile, "new password", true)
			if err != nil {
				return err
			}
			defer newPassword.Close()
			subject, current := profile.AccountNumber, password.String()
			if account != "" && bank.AccountNumber(account) != profile.AccountNumber {
				subject, current = bank.AccountNumber(account), ""
			}
			updated, err := client.UpdatePassword(ctx, subject, current, newPassword.String())
			if err != nil {
				return err
			}
			return a.printProfiles(updated)
		},
	}
}
