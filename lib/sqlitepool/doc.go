// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides Teller's SQLite connection pool.
//
// It wraps zombiezen.com/go/sqlite with the pragmas a ledger needs:
// WAL journal mode so readers never block the single writer,
// synchronous=FULL so a committed transfer survives power loss,
// enforced foreign keys, and a busy timeout so writers queue instead
// of failing with SQLITE_BUSY.
//
// Callers either borrow a raw connection with [Pool.Take] and return
// it with [Pool.Put], or use the [Pool.Read] and [Pool.Write] helpers
// which handle borrowing and, for writes, wrap the work in a
// BEGIN IMMEDIATE transaction that commits on a nil return and rolls
// back otherwise. Connections are not safe for concurrent use.
//
// # Migrations
//
// [Config.Migrations] is an ordered list of SQL scripts. On Open the
// pool compares the database's user_version with the list length and
// applies the missing scripts inside one immediate transaction,
// bumping user_version as it goes. Scripts are append-only: never edit
// a migration that has shipped.
//
// # Usage
//
//	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
//	    Path:       "/var/lib/teller/ledger.db",
//	    PoolSize:   8,
//	    Logger:     logger,
//	    Migrations: []string{schemaV1},
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.Write(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, "UPDATE ...", nil)
//	})
package sqlitepool
