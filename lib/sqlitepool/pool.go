// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config holds the parameters for opening a pool. Path is required.
type Config struct {
	// Path is the database file. The parent directory must exist.
	// ":memory:" is accepted only with PoolSize 1, since every
	// in-memory connection is a separate database.
	Path string

	// PoolSize is the number of connections. Zero or negative means
	// max(runtime.NumCPU(), 4).
	PoolSize int

	// Logger receives pool lifecycle messages. Nil discards them.
	Logger *slog.Logger

	// Migrations are applied in order to bring user_version up to
	// len(Migrations).
	Migrations []string
}

// Pool is a fixed-size pool of prepared SQLite connections. It is
// safe for concurrent use.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=FULL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA cache_size=-8192",
	"PRAGMA temp_store=MEMORY",
}

// Open creates the pool and applies pending migrations. The caller
// must Close the pool.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = max(runtime.NumCPU(), 4)
	}
	if cfg.Path == ":memory:" && poolSize != 1 {
		return nil, fmt.Errorf("sqlitepool: :memory: requires PoolSize 1, got %d", poolSize)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}
	pool := &Pool{inner: inner, logger: logger, path: cfg.Path}

	applied, err := pool.migrate(ctx, cfg.Migrations)
	if err != nil {
		inner.Close()
		return nil, err
	}

	logger.Info("sqlite pool opened",
		"path", cfg.Path,
		"pool_size", poolSize,
		"schema_version", len(cfg.Migrations),
		"migrations_applied", applied,
	)
	return pool, nil
}

// Take borrows a connection, blocking until one is free or ctx ends.
// The caller must Put it back.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a borrowed connection. Nil is a no-op.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Read runs fn on a borrowed connection outside any explicit
// transaction. Use it for single-statement reads, which SQLite runs in
// an implicit snapshot.
func (p *Pool) Read(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)
	return fn(conn)
}

// Write runs fn inside a BEGIN IMMEDIATE transaction. The write lock is
// taken up front so concurrent writers queue on busy_timeout rather
// than deadlocking on lock upgrade. A nil return commits; an error rolls
// back.
func (p *Pool) Write(ctx context.Context, fn func(conn *sqlite.Conn) error) (err error) {
	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitepool: begin immediate: %w", err)
	}
	defer endFn(&err)
	return fn(conn)
}

// Close closes all connections, blocking until borrowed connections are
// returned.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close error", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}

func prepareConnection(conn *sqlite.Conn) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}
	return nil
}

// migrate brings user_version up to len(migrations) and returns how
// many scripts it ran.
func (p *Pool) migrate(ctx context.Context, migrations []string) (int, error) {
	applied := 0
	err := p.Write(ctx, func(conn *sqlite.Conn) error {
		var version int
		err := sqlitex.ExecuteTransient(conn, "PRAGMA user_version", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				version = stmt.ColumnInt(0)
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("sqlitepool: reading user_version: %w", err)
		}
		if version > len(migrations) {
			return fmt.Errorf("sqlitepool: %s has schema version %d, newer than this binary's %d",
				p.path, version, len(migrations))
		}
		for index := version; index < len(migrations); index++ {
			if err := sqlitex.ExecuteScript(conn, migrations[index], nil); err != nil {
				return fmt.Errorf("sqlitepool: migration %d: %w", index+1, err)
			}
			// PRAGMA does not accept bound parameters.
			bump := fmt.Sprintf("PRAGMA user_version=%d", index+1)
			if err := sqlitex.ExecuteTransient(conn, bump, nil); err != nil {
				return fmt.Errorf("sqlitepool: setting user_version: %w", err)
			}
			applied++
		}
		return nil
	})
	return applied, err
}
