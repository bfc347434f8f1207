// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
)

func verifyCommand() *cli.Command {
	var (
		configPath string
		archive    string
		identity   string
	)
	return &cli.Command{
		Name:    "verify",
		Summary: "Check every account's hash chain",
		Description: "Recompute the hash chain of every account and check each user's balance " +
			"against its history.\n\n" +
			"With --archive the check runs on a backup instead of the live ledger.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			configFlag(flagSet, &configPath)
			flagSet.StringVarP(&archive, "archive", "a", "", "verify a backup archive")
			flagSet.StringVarP(&identity, "identity", "i", "", "age identity file for an encrypted archive")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if archive != "" {
				snapshot, summary, err := readArchive(archive, identity)
				if err != nil {
					return err
				}
				if err := ledger.VerifySnapshot(snapshot); err != nil {
					return err
				}
				printSummary(os.Stdout, archive, summary)
				return nil
			}

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
			snapshot, err := store.Snapshot(ctx)
			if err != nil {
				return err
			}
			if err := ledger.VerifySnapshot(snapshot); err != nil {
				return err
			}
			fmt.Printf("ledger intact: %d users, %d transactions\n",
				len(snapshot.Users), len(snapshot.Transactions))
			return nil
		},
	}
}
