// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/teller/lib/backup"
	"github.com/bureau-foundation/teller/lib/cli"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/config"
	"github.com/bureau-foundation/teller/lib/dispatch"
	"github.com/bureau-foundation/teller/lib/passhash"
	"github.com/bureau-foundation/teller/lib/seed"
	"github.com/bureau-foundation/teller/lib/service"
	"github.com/bureau-foundation/teller/lib/version"
)

func serveCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "serve",
		Summary: "Run the server",
		Description: "Accept client connections and serve requests until interrupted.\n\n" +
			"When seed.file is set and the ledger holds no users, the seed is applied first. " +
			"When backup.schedule is set, archives are written to backup.directory as it fires.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			configFlag(flagSet, &configPath)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Serve with an explicit configuration", Command: "tellerd serve --config /etc/teller/teller.yaml"},
		},
		Run: func(ctx context.Context, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger, err := cli.NewLogger(cfg.LogLevel(), cfg.Log.Format)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, clock.Real(), logger, nil)
		},
	}
}

// serve runs the server until ctx is cancelled. started, when set,
// receives the server before Serve is called.
func serve(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger, started func(*service.Server)) error {
	logger.Info("starting tellerd",
		"version", version.Info(),
		"environment", cfg.Environment,
		"store", cfg.Store.Driver,
	)

	store, closeStore, err := openStore(ctx, cfg, clk, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("closing ledger", "error", err)
		}
	}()

	hasher, err := newHasher(cfg)
	if err != nil {
		return err
	}

	if cfg.Seed.File != "" {
		if err := applySeedFile(ctx, cfg.Seed.File, store, hasher, logger); err != nil {
			return err
		}
	}

	dispatcher, err := dispatch.New(dispatch.Config{
		Store:       store,
		Hasher:      hasher,
		Logger:      logger.With("component", "dispatch"),
		InitHistory: cfg.Dashboard.History,
	})
	if err != nil {
		return err
	}

	server, err := service.NewServer(service.Config{
		Network:      cfg.Listen.Network,
		Address:      cfg.Listen.Address,
		Dispatcher:   dispatcher,
		Logger:       logger.With("component", "server"),
		Clock:        clk,
		MaxFrameSize: cfg.Limits.MaxFrameBytes,
		IdleTimeout:  cfg.Limits.IdleTimeout,
		WriteTimeout: cfg.Limits.WriteTimeout,
	})
	if err != nil {
		return err
	}
	if started != nil {
		started(server)
	}

	if cfg.Backup.Schedule == "" {
		return server.Serve(ctx)
	}
	scheduler, err := newScheduler(cfg, store, clk, logger)
	if err != nil {
		return err
	}
	scheduleDone := make(chan error, 1)
	scheduleCtx, stopSchedule := context.WithCancel(ctx)
	go func() { scheduleDone <- scheduler.Run(scheduleCtx) }()
	serveErr := server.Serve(ctx)
	stopSchedule()
	if err := <-scheduleDone; err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// newScheduler builds the periodic backup job from the backup section.
func newScheduler(cfg *config.Config, store backend, clk clock.Clock, logger *slog.Logger) (*backup.Scheduler, error) {
	schedule, err := backup.ParseSchedule(cfg.Backup.Schedule)
	if err != nil {
		return nil, err
	}
	compression, err := backup.ParseCompression(cfg.Backup.Compression)
	if err != nil {
		return nil, err
	}
	recipients, err := backupRecipients(cfg, nil, false)
	if err != nil {
		return nil, err
	}
	return &backup.Scheduler{
		Schedule:  schedule,
		Source:    store,
		Directory: cfg.Backup.Directory,
		Options:   backup.WriteOptions{Compression: compression, Recipients: recipients},
		Keep:      cfg.Backup.Keep,
		Clock:     clk,
		Logger:    logger.With("component", "backup"),
	}, nil
}

// applySeedFile seeds an empty ledger and leaves a populated one alone.
func applySeedFile(ctx context.Context, path string, store backend, hasher *passhash.Hasher, logger *slog.Logger) error {
	file, err := seed.ReadFile(path)
	if err != nil {
		return err
	}
	result, err := seed.Apply(ctx, store, hasher, file)
	if errors.Is(err, seed.ErrNotEmpty) {
		logger.Info("ledger already populated, seed skipped", "file", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("applying seed %s: %w", path, err)
	}
	logger.Info("ledger seeded",
		"file", path,
		"users", result.Users,
		"admins", result.Admins,
		"transfers", result.Transfers,
	)
	return nil
}
