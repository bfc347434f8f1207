// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexedwards/argon2id"

	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/config"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/ledger/memstore"
	"github.com/bureau-foundation/teller/lib/ledger/sqlitestore"
	"github.com/bureau-foundation/teller/lib/passhash"
)

// backend is a ledger that can also be snapshotted.
type backend interface {
	ledger.Store
	ledger.Snapshotter
}

// openStore opens the configured ledger. The returned function closes
// it.
func openStore(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) (backend, func() error, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memstore.New(clk), func() error { return nil }, nil
	case "sqlite":
		store, err := sqlitestore.Open(ctx, sqlitestore.Config{
			Path:     cfg.Store.Path,
			PoolSize: cfg.Store.PoolSize,
			Clock:    clk,
			Logger:   logger.With("component", "ledger"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func newHasher(cfg *config.Config) (*passhash.Hasher, error) {
	return passhash.New(&argon2id.Params{
		Memory:      cfg.Passwords.MemoryKiB,
		Iterations:  cfg.Passwords.Iterations,
		Parallelism: cfg.Passwords.Parallelism,
		SaltLength:  passhash.DefaultParams.SaltLength,
		KeyLength:   passhash.DefaultParams.KeyLength,
	})
}
