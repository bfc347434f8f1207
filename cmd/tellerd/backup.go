// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/backup"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/config"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/sealed"
	"github.com/bureau-foundation/teller/lib/secret"
)

func backupCommand() *cli.Command {
	var (
		configPath  string
		output      string
		compression string
		recipients  []string
		plain       bool
	)
	return &cli.Command{
		Name:    "backup",
		Summary: "Write a snapshot archive of the ledger",
		Description: "Snapshot every user and transaction into a compressed archive.\n\n" +
			"Archives are encrypted to backup.recipients from the configuration, plus any " +
			"--recipient keys. The output file is written atomically.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("backup", pflag.ContinueOnError)
			configFlag(flagSet, &configPath)
			flagSet.StringVarP(&output, "output", "o", "", "archive path (default: a timestamped file in backup.directory)")
			flagSet.StringVar(&compression, "compression", "", "zstd, lz4 or none (default backup.compression)")
			flagSet.StringArrayVarP(&recipients, "recipient", "r", nil, "age public key to encrypt to (repeatable)")
			flagSet.BoolVar(&plain, "no-encrypt", false, "ignore configured recipients and write a plain archive")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Back up with configured defaults", Command: "tellerd backup"},
			{Description: "Back up to a specific file with lz4", Command: "tellerd backup -o /tmp/ledger.bak --compression lz4"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := requirePersistent(cfg); err != nil {
				return err
			}
			if compression == "" {
				compression = cfg.Backup.Compression
			}
			codec, err := backup.ParseCompression(compression)
			if err != nil {
				return err
			}
			keys, err := backupRecipients(cfg, recipients, plain)
			if err != nil {
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
			if output == "" {
				output = filepath.Join(cfg.Backup.Directory, backup.FileName(snapshot.TakenAt))
			}
			summary, err := backup.WriteFile(output, snapshot, backup.WriteOptions{
				Compression: codec,
				Recipients:  keys,
			})
			if err != nil {
				return err
			}
			printSummary(os.Stdout, output, summary)
			return nil
		},
	}
}

func restoreCommand() *cli.Command {
	var (
		configPath string
		identity   string
		force      bool
	)
	return &cli.Command{
		Name:    "restore",
		Summary: "Replace the ledger with an archive",
		Description: "Verify an archive and replace the ledger's entire contents with it.\n\n" +
			"A ledger that already holds users is only replaced with --force.",
		Usage: "tellerd restore [flags] ARCHIVE",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("restore", pflag.ContinueOnError)
			configFlag(flagSet, &configPath)
			flagSet.StringVarP(&identity, "identity", "i", "", "age identity file (default backup.identity)")
			flagSet.BoolVar(&force, "force", false, "overwrite a populated ledger")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("restore takes exactly one archive path")
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := requirePersistent(cfg); err != nil {
				return err
			}
			if identity == "" {
				identity = cfg.Backup.Identity
			}
			snapshot, summary, err := readArchive(args[0], identity)
			if err != nil {
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

			if !force {
				existing, err := store.ListUsers(ctx)
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					return fmt.Errorf("ledger holds %d users; pass --force to replace them", len(existing))
				}
			}
			if err := store.Restore(ctx, snapshot); err != nil {
				return err
			}
			logger.Info("ledger restored",
				"archive", args[0],
				"users", summary.Users,
				"transactions", summary.Transactions,
				"taken_at", summary.TakenAt,
			)
			return nil
		},
	}
}

// requirePersistent rejects commands that would act on a throwaway
// in-memory ledger.
func requirePersistent(cfg *config.Config) error {
	if cfg.Store.Driver == "memory" {
		return errors.New("store.driver is memory; this command needs a persistent store")
	}
	return nil
}

func backupRecipients(cfg *config.Config, extra []string, plain bool) ([]string, error) {
	if plain {
		if len(extra) > 0 {
			return nil, errors.New("--no-encrypt and --recipient are mutually exclusive")
		}
		return nil, nil
	}
	var keys []string
	if cfg.Backup.Recipients != "" {
		configured, err := sealed.ReadRecipientsFile(cfg.Backup.Recipients)
		if err != nil {
			return nil, err
		}
		keys = append(keys, configured...)
	}
	for _, key := range extra {
		if err := sealed.ParsePublicKey(key); err != nil {
			return nil, fmt.Errorf("recipient %q: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// readArchive opens and decodes an archive. identityPath may be empty
// for plain archives.
func readArchive(path, identityPath string) (ledger.Snapshot, backup.Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return ledger.Snapshot{}, backup.Summary{}, err
	}
	defer file.Close()

	var options backup.ReadOptions
	if identityPath != "" {
		identities, err := secret.ReadFromPath(identityPath)
		if err != nil {
			return ledger.Snapshot{}, backup.Summary{}, fmt.Errorf("reading identity: %w", err)
		}
		defer identities.Close()
		options.Identities = identities
	}
	snapshot, summary, err := backup.Read(file, options)
	if errors.Is(err, backup.ErrEncrypted) {
		return snapshot, summary, fmt.Errorf("%s: %w (pass --identity)", path, err)
	}
	if err != nil {
		return snapshot, summary, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, summary, nil
}

func printSummary(w io.Writer, path string, summary backup.Summary) {
	table := cli.NewTable(w, "FIELD", "VALUE")
	if path != "" {
		table.Row("archive", path)
	}
	table.Row("taken", summary.TakenAt.UTC().Format(time.RFC3339))
	table.Row("users", summary.Users)
	table.Row("retired", summary.Retired)
	table.Row("transactions", summary.Transactions)
	table.Row("compression", summary.Compression)
	table.Row("encrypted", summary.Encrypted)
	table.Row("digest", summary.Digest)
	table.Flush()
}
