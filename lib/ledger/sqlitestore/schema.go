// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

// migrations are applied in order by sqlitepool. Append only.
var migrations = []string{
	`
CREATE TABLE users (
	account_number TEXT    PRIMARY KEY,
	first_name     TEXT    NOT NULL,
	last_name      TEXT    NOT NULL,
	email          TEXT    NOT NULL,
	password_hash  TEXT    NOT NULL,
	admin          INTEGER NOT NULL DEFAULT 0,
	balance        INTEGER NOT NULL CHECK (balance >= 0),
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL,
	deleted_at     INTEGER
) STRICT;

CREATE UNIQUE INDEX users_live_email ON users (email) WHERE deleted_at IS NULL;

CREATE TABLE transactions (
	id             INTEGER PRIMARY KEY,
	account_number TEXT    NOT NULL REFERENCES users (account_number),
	kind           TEXT    NOT NULL,
	amount         INTEGER NOT NULL,
	counterparty   TEXT    NOT NULL DEFAULT '',
	balance        INTEGER NOT NULL CHECK (balance >= 0),
	timestamp      INTEGER NOT NULL,
	digest         BLOB    NOT NULL
) STRICT;

CREATE INDEX transactions_by_account ON transactions (account_number, id);
`,
}

const userColumns = `account_number, first_name, last_name, email, password_hash,
	admin, balance, created_at, updated_at`

const transactionColumns = `id, account_number, kind, amount, counterparty,
	balance, timestamp, digest`
