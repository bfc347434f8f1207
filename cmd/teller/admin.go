// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/protocol"
)

func (a *app) usersCommand() *cli.Command {
	return &cli.Command{
		Name:    "users",
		Summary: "List every account (administrators only)",
		Flags:   func() *pflag.FlagSet { return a.flags("users") },
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			client, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			users, err := client.GetDatabase(ctx)
			if err != nil {
				return err
			}
			return a.printProfiles(users...)
		},
	}
}

func (a *app) createUserCommand() *cli.Command {
	var (
		firstName       string
		lastName        string
		email           string
		admin           bool
		balance         string
		newPasswordFile string
	)
	return &cli.Command{
		Name:    "create-user",
		Summary: "Open a new account (administrators only)",
		Usage:   "teller create-user [flags] ACCOUNT",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("create-user")
			flagSet.StringVar(&firstName, "first-name", "", "first name")
			flagSet.StringVar(&lastName, "last-name", "", "last name")
			flagSet.StringVar(&email, "email", "", "email address")
			flagSet.BoolVar(&admin, "admin", false, "grant administrator rights")
			flagSet.StringVar(&balance, "balance", "", "opening balance, e.g. 100.00")
			flagSet.StringVar(&newPasswordFile, "new-password-file", "", "read the new user's password from a file (default: prompt twice)")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Open an account with an opening balance",
				Command:     "teller create-user 482913 --first-name Merit --last-name Ptah --email merit@example.com --balance 500",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one ACCOUNT")
			}
			request := protocol.CreateNewUser{
				AccountNumber: bank.AccountNumber(args[0]),
				FirstName:     firstName,
				LastName:      lastName,
				Email:         email,
				Admin:         admin,
			}
			if balance != "" {
				opening, err := bank.ParseAmount(balance)
				if err != nil {
					return fmt.Errorf("--balance %q: %w", balance, err)
				}
				request.InitialBalance = &opening
			}
			if a.passwordFile == "-" && newPasswordFile == "-" {
				return errors.New("--password-file and --new-password-file cannot both be stdin")
			}
			client, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			password, err := cli.ReadPassword(newPasswordFile, "password for "+args[0], true)
			if err != nil {
				return err
			}
			defer password.Close()
			request.Password = password.String()
			profile, err := client.CreateNewUser(ctx, request)
			if err != nil {
				return err
			}
			return a.printProfiles(profile)
		},
	}
}

func (a *app) deleteUserCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete-user",
		Summary: "Close an account (administrators only)",
		Description: "Delete an account. Its history is kept and its account number is never " +
			"reissued; its email becomes free.",
		Usage: "teller delete-user [flags] ACCOUNT",
		Flags: func() *pflag.FlagSet { return a.flags("delete-user") },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one ACCOUNT")
			}
			client, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			profile, err := client.DeleteUser(ctx, bank.AccountNumber(args[0]))
			if err != nil {
				return err
			}
			return a.printProfiles(profile)
		},
	}
}

func (a *app) updateUserCommand() *cli.Command {
	var (
		firstName string
		lastName  string
		email     string
		role      string
	)
	return &cli.Command{
		Name:    "update-user",
		Summary: "Edit an account's profile (administrators only)",
		Description: "Change the given fields of an account. Omitted flags leave the field as is.\n\n" +
			"Balances cannot be edited; use deposit, withdraw or transfer.",
		Usage: "teller update-user [flags] ACCOUNT",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flags("update-user")
			flagSet.StringVar(&firstName, "first-name", "", "new first name")
			flagSet.StringVar(&lastName, "last-name", "", "new last name")
			flagSet.StringVar(&email, "email", "", "new email address")
			flagSet.StringVar(&role, "role", "", "user or admin")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one ACCOUNT")
			}
			request, err := updateRequest(bank.AccountNumber(args[0]), firstName, lastName, email, role)
			if err != nil {
				return err
			}
			client, _, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			profile, err := client.UpdateUser(ctx, request)
			if err != nil {
				return err
			}
			return a.printProfiles(profile)
		},
	}
}

// updateRequest sets only the non-empty fields. The server rejects a
// request with none.
func updateRequest(account bank.AccountNumber, firstName, lastName, email, role string) (protocol.UpdateUser, error) {
	request := protocol.UpdateUser{AccountNumber: account}
	if firstName != "" {
		request.FirstName = &firstName
	}
	if lastName != "" {
		request.LastName = &lastName
	}
	if email != "" {
		request.Email = &email
	}
	switch role {
	case "":
	case bank.RoleAdmin, bank.RoleUser:
		admin := role == bank.RoleAdmin
		request.Admin = &admin
	default:
		return request, fmt.Errorf("--role must be %s or %s, got %q", bank.RoleUser, bank.RoleAdmin, role)
	}
	return request, nil
}
