// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/seed"
)

func seedCommand() *cli.Command {
	var (
		configPath string
		file       string
		generate   bool
		options    = seed.DefaultGenerateOptions
		dryRun     bool
		jsonOutput bool
	)
	return &cli.Command{
		Name:    "seed",
		Summary: "Populate an empty ledger",
		Description: "Apply a JSONC seed file, or generate random users and transfers, " +
			"to a ledger that holds no users.\n\n" +
			"Generated credentials are printed once. They are not recoverable later.",
		Usage: "tellerd seed (--file PATH | --generate) [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
			configFlag(flagSet, &configPath)
			flagSet.StringVarP(&file, "file", "f", "", "seed file to apply")
			flagSet.BoolVar(&generate, "generate", false, "generate random seed data")
			flagSet.IntVar(&options.Admins, "admins", options.Admins, "generated administrators")
			flagSet.IntVar(&options.Users, "users", options.Users, "generated customers")
			flagSet.IntVar(&options.Transfers, "transfers", options.Transfers, "generated transfers")
			flagSet.Uint64Var(&options.Seed, "random-seed", 0, "make generation reproducible")
			flagSet.BoolVar(&dryRun, "dry-run", false, "validate and print without touching the ledger")
			flagSet.BoolVar(&jsonOutput, "json", false, "print generated users as JSON")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Seed from a file", Command: "tellerd seed --file seed.jsonc"},
			{Description: "Generate a demo bank", Command: "tellerd seed --generate --users 20 --transfers 50"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			seedFile, err := loadSeed(file, generate, options)
			if err != nil {
				return err
			}
			if err := seedFile.Validate(); err != nil {
				return err
			}
			if !dryRun {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				if err := requirePersistent(cfg); err != nil {
					return err
				}
				logger, err := cli.NewLogger(cfg.LogLevel(), cfg.Log.Format)
				if err != nil {
					return err
				}
				store, closeStore, err := openStore(ctx, cfg, clock.Real(), logger)
				if err != nil {
					return err
				}
				defer closeStore()
				hasher, err := newHasher(cfg)
				if err != nil {
					return err
				}
				result, err := seed.Apply(ctx, store, hasher, seedFile)
				if errors.Is(err, seed.ErrNotEmpty) {
					return fmt.Errorf("%w (restore into a fresh store or drop the existing one first)", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "seeded %d users (%d administrators) and %d transfers\n",
					result.Users, result.Admins, result.Transfers)
			}
			if generate {
				return printCredentials(os.Stdout, seedFile, jsonOutput)
			}
			return nil
		},
	}
}

func loadSeed(file string, generate bool, options seed.GenerateOptions) (*seed.File, error) {
	switch {
	case file != "" && generate:
		return nil, errors.New("--file and --generate are mutually exclusive")
	case file != "":
		return seed.ReadFile(file)
	case generate:
		if options.Admins < 0 || options.Users < 0 || options.Transfers < 0 {
			return nil, errors.New("generated counts must not be negative")
		}
		if options.Admins+options.Users == 0 {
			return nil, errors.New("nothing to generate: --admins and --users are both zero")
		}
		return seed.Generate(options), nil
	}
	return nil, errors.New("one of --file or --generate is required")
}

// printCredentials writes the generated users with their plain-text
// passwords.
func printCredentials(w io.Writer, file *seed.File, jsonOutput bool) error {
	if jsonOutput {
		return cli.WriteJSON(w, file.Users)
	}
	table := cli.NewTable(w, "ACCOUNT", "ROLE", "NAME", "EMAIL", "PASSWORD", "OPENING")
	for _, user := range file.Users {
		role := user.Role
		if role == "" {
			role = bank.RoleUser
		}
		table.Row(user.AccountNumber, role, user.FirstName+" "+user.LastName,
			user.Email, user.Password, bank.FormatAmount(user.Balance))
	}
	return table.Flush()
}
