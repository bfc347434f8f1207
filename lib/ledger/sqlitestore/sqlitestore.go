// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitestore is a [ledger.Store] on SQLite.
//
// Every mutation runs in one BEGIN IMMEDIATE transaction, so writers
// are serialized by SQLite's write lock and each operation is atomic
// at the facade boundary. Timestamps are stored as unix nanoseconds
// and read back in UTC. Deleted users keep their row with deleted_at
// set: their history stays joined to a real account and their account
// number stays taken, while a partial unique index frees their email.
package sqlitestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/sqlitepool"
)

// Config holds the parameters for opening a store.
type Config struct {
	// Path is the database file. Its parent directory must exist.
	Path string

	// PoolSize is passed to sqlitepool.
	PoolSize int

	Clock  clock.Clock
	Logger *slog.Logger
}

// Store is the SQLite ledger.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

var (
	_ ledger.Store       = (*Store)(nil)
	_ ledger.Snapshotter = (*Store)(nil)
)

// Open opens or creates the database and migrates its schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
		Path:       cfg.Path,
		PoolSize:   cfg.PoolSize,
		Logger:     logger,
		Migrations: migrations,
	})
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	return &Store{pool: pool, clock: clk, logger: logger}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) FindUser(ctx context.Context, account bank.AccountNumber) (bank.User, error) {
	var user bank.User
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		var err error
		user, err = findUser(conn, account)
		return err
	})
	return user, err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (bank.User, error) {
	var user bank.User
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		found := false
		err := sqlitex.Execute(conn,
			`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`,
			&sqlitex.ExecOptions{
				Args: []any{email},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					user = scanUser(stmt)
					found = true
					return nil
				},
			})
		if err != nil {
			return fmt.Errorf("finding email %q: %w", email, err)
		}
		if !found {
			return fmt.Errorf("finding email %q: %w", email, ledger.ErrNotFound)
		}
		return nil
	})
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, user bank.User) (bank.User, error) {
	if user.Balance < 0 || user.Balance > bank.MaxAmount {
		return bank.User{}, fmt.Errorf("creating account %s: opening balance %d: %w",
			user.AccountNumber, user.Balance, ledger.ErrInvalidAmount)
	}
	now := s.clock.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		taken, err := exists(conn, `SELECT 1 FROM users WHERE account_number = ?`, string(user.AccountNumber))
		if err != nil {
			return fmt.Errorf("creating account %s: %w", user.AccountNumber, err)
		}
		if taken {
			return fmt.Errorf("creating account %s: %w", user.AccountNumber, ledger.ErrDuplicate)
		}
		taken, err = exists(conn, `SELECT 1 FROM users WHERE email = ? AND deleted_at IS NULL`, user.Email)
		if err != nil {
			return fmt.Errorf("creating account %s: %w", user.AccountNumber, err)
		}
		if taken {
			return fmt.Errorf("creating account %s: email %q: %w", user.AccountNumber, user.Email, ledger.ErrDuplicate)
		}

		if err := insertUser(conn, user, nil); err != nil {
			return fmt.Errorf("creating account %s: %w", user.AccountNumber, err)
		}
		if user.Balance > 0 {
			_, err := appendEntry(conn, bank.Transaction{
				AccountNumber: user.AccountNumber,
				Kind:          bank.KindDeposit,
				Amount:        user.Balance,
				Balance:       user.Balance,
				Timestamp:     now,
			})
			if err != nil {
				return fmt.Errorf("creating account %s: %w", user.AccountNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return bank.User{}, err
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, account bank.AccountNumber, update bank.UserUpdate) (bank.User, error) {
	var updated bank.User
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		current, err := findUser(conn, account)
		if err != nil {
			return fmt.Errorf("updating: %w", err)
		}
		updated = update.Apply(current)
		updated.UpdatedAt = s.clock.Now()

		if updated.Email != current.Email {
			taken, err := exists(conn, `SELECT 1 FROM users WHERE email = ? AND deleted_at IS NULL`, updated.Email)
			if err != nil {
				return fmt.Errorf("updating account %s: %w", account, err)
			}
			if taken {
				return fmt.Errorf("updating account %s: email %q: %w", account, updated.Email, ledger.ErrDuplicate)
			}
		}

		err = sqlitex.Execute(conn, `
			UPDATE users
			SET first_name = ?, last_name = ?, email = ?, password_hash = ?, admin = ?, updated_at = ?
			WHERE account_number = ?`,
			&sqlitex.ExecOptions{Args: []any{
				updated.FirstName, updated.LastName, updated.Email, updated.PasswordHash,
				boolInt(updated.Admin), updated.UpdatedAt.UnixNano(), string(account),
			}})
		if err != nil {
			return fmt.Errorf("updating account %s: %w", account, err)
		}
		return nil
	})
	if err != nil {
		return bank.User{}, err
	}
	return updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, account bank.AccountNumber) (bank.User, error) {
	var removed bank.User
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		var err error
		removed, err = findUser(conn, account)
		if err != nil {
			return fmt.Errorf("deleting: %w", err)
		}
		err = sqlitex.Execute(conn, `UPDATE users SET deleted_at = ? WHERE account_number = ?`,
			&sqlitex.ExecOptions{Args: []any{s.clock.Now().UnixNano(), string(account)}})
		if err != nil {
			return fmt.Errorf("deleting account %s: %w", account, err)
		}
		return nil
	})
	if err != nil {
		return bank.User{}, err
	}
	return removed, nil
}

func (s *Store) RecordTransaction(ctx context.Context, account bank.AccountNumber, amount int64) (bank.Transaction, bank.User, error) {
	if amount == 0 || amount > bank.MaxAmount || amount < -bank.MaxAmount {
		return bank.Transaction{}, bank.User{}, fmt.Errorf("recording %d on %s: %w", amount, account, ledger.ErrInvalidAmount)
	}

	var transaction bank.Transaction
	var user bank.User
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		var err error
		user, err = findUser(conn, account)
		if err != nil {
			return fmt.Errorf("recording: %w", err)
		}
		balance := user.Balance + amount
		if balance < 0 {
			return fmt.Errorf("recording %d on %s: %w", amount, account, ledger.ErrInsufficientFunds)
		}
		if balance > bank.MaxAmount {
			return fmt.Errorf("recording %d on %s: %w", amount, account, ledger.ErrBalanceLimit)
		}

		now := s.clock.Now()
		transaction, err = appendEntry(conn, bank.Transaction{
			AccountNumber: account,
			Kind:          bank.KindForAmount(amount),
			Amount:        amount,
			Balance:       balance,
			Timestamp:     now,
		})
		if err != nil {
			return fmt.Errorf("recording on %s: %w", account, err)
		}
		if err := setBalance(conn, account, balance, now); err != nil {
			return err
		}
		user.Balance = balance
		user.UpdatedAt = now
		return nil
	})
	if err != nil {
		return bank.Transaction{}, bank.User{}, err
	}
	return transaction, user, nil
}

func (s *Store) Transfer(ctx context.Context, from, to bank.AccountNumber, amount int64) (ledger.TransferResult, error) {
	if from == to {
		return ledger.TransferResult{}, fmt.Errorf("transfer %s -> %s: %w", from, to, ledger.ErrSameAccount)
	}
	if amount <= 0 || amount > bank.MaxAmount {
		return ledger.TransferResult{}, fmt.Errorf("transfer %d from %s: %w", amount, from, ledger.ErrInvalidAmount)
	}

	var result ledger.TransferResult
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		source, err := findUser(conn, from)
		if err != nil {
			return fmt.Errorf("transfer source: %w", err)
		}
		destination, err := findUser(conn, to)
		if err != nil {
			return fmt.Errorf("transfer destination: %w", err)
		}
		sourceBalance := source.Balance - amount
		if sourceBalance < 0 {
			return fmt.Errorf("transfer %d from %s: %w", amount, from, ledger.ErrInsufficientFunds)
		}
		destinationBalance := destination.Balance + amount
		if destinationBalance > bank.MaxAmount {
			return fmt.Errorf("transfer %d to %s: %w", amount, to, ledger.ErrBalanceLimit)
		}

		now := s.clock.Now()
		result.Debit, err = appendEntry(conn, bank.Transaction{
			AccountNumber: from,
			Kind:          bank.KindTransferOut,
			Amount:        -amount,
			Counterparty:  to,
			Balance:       sourceBalance,
			Timestamp:     now,
		})
		if err != nil {
			return fmt.Errorf("transfer debit on %s: %w", from, err)
		}
		result.Credit, err = appendEntry(conn, bank.Transaction{
			AccountNumber: to,
			Kind:          bank.KindTransferIn,
			Amount:        amount,
			Counterparty:  from,
			Balance:       destinationBalance,
			Timestamp:     now,
		})
		if err != nil {
			return fmt.Errorf("transfer credit on %s: %w", to, err)
		}
		if err := setBalance(conn, from, sourceBalance, now); err != nil {
			return err
		}
		if err := setBalance(conn, to, destinationBalance, now); err != nil {
			return err
		}
		source.Balance = sourceBalance
		source.UpdatedAt = now
		result.Source = source
		return nil
	})
	if err != nil {
		return ledger.TransferResult{}, err
	}
	return result, nil
}

func (s *Store) ListTransactions(ctx context.Context, account bank.AccountNumber, limit int) ([]bank.Transaction, error) {
	// SQLite treats a negative LIMIT as unbounded.
	if limit <= 0 {
		limit = -1
	}
	history := []bank.Transaction{}
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT `+transactionColumns+` FROM transactions
			WHERE account_number = ? ORDER BY id DESC LIMIT ?`,
			&sqlitex.ExecOptions{
				Args: []any{string(account), limit},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					history = append(history, scanTransaction(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("listing history of %s: %w", account, err)
	}
	return history, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]bank.User, error) {
	users := []bank.User{}
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY account_number`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				users = append(users, scanUser(stmt))
				return nil
			}})
	})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Snapshot reads inside a write transaction so no mutation can land
// between the users and transactions reads.
func (s *Store) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	snapshot := ledger.Snapshot{
		Version:      ledger.SnapshotVersion,
		TakenAt:      s.clock.Now(),
		Users:        []bank.User{},
		Transactions: []bank.Transaction{},
	}
	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn,
			`SELECT `+userColumns+`, deleted_at FROM users ORDER BY account_number`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				if stmt.ColumnIsNull(9) {
					snapshot.Users = append(snapshot.Users, scanUser(stmt))
					return nil
				}
				snapshot.Retired = append(snapshot.Retired, ledger.RetiredAccount{
					AccountNumber: bank.AccountNumber(stmt.ColumnText(0)),
					DeletedAt:     fromNanos(stmt.ColumnInt64(9)),
				})
				return nil
			}})
		if err != nil {
			return fmt.Errorf("snapshot users: %w", err)
		}
		err = sqlitex.Execute(conn,
			`SELECT `+transactionColumns+` FROM transactions ORDER BY id`,
			&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
				snapshot.Transactions = append(snapshot.Transactions, scanTransaction(stmt))
				return nil
			}})
		if err != nil {
			return fmt.Errorf("snapshot transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return ledger.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *Store) Restore(ctx context.Context, snapshot ledger.Snapshot) error {
	if snapshot.Version != ledger.SnapshotVersion {
		return fmt.Errorf("restoring snapshot: unsupported version %d", snapshot.Version)
	}
	if err := ledger.VerifySnapshot(snapshot); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.ExecuteScript(conn, `DELETE FROM transactions; DELETE FROM users;`, nil); err != nil {
			return fmt.Errorf("clearing ledger: %w", err)
		}
		for _, user := range snapshot.Users {
			if err := insertUser(conn, user, nil); err != nil {
				return fmt.Errorf("restoring account %s: %w", user.AccountNumber, err)
			}
		}
		for _, retired := range snapshot.Retired {
			placeholder := bank.User{
				AccountNumber: retired.AccountNumber,
				CreatedAt:     retired.DeletedAt,
				UpdatedAt:     retired.DeletedAt,
			}
			deletedAt := retired.DeletedAt
			if err := insertUser(conn, placeholder, &deletedAt); err != nil {
				return fmt.Errorf("restoring retired account %s: %w", retired.AccountNumber, err)
			}
		}
		for _, transaction := range snapshot.Transactions {
			if err := insertTransaction(conn, transaction); err != nil {
				return fmt.Errorf("restoring transaction %d: %w", transaction.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("ledger restored",
		"users", len(snapshot.Users),
		"retired", len(snapshot.Retired),
		"transactions", len(snapshot.Transactions),
	)
	return nil
}

func findUser(conn *sqlite.Conn, account bank.AccountNumber) (bank.User, error) {
	var user bank.User
	found := false
	err := sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE account_number = ? AND deleted_at IS NULL`,
		&sqlitex.ExecOptions{
			Args: []any{string(account)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user = scanUser(stmt)
				found = true
				return nil
			},
		})
	if err != nil {
		return bank.User{}, fmt.Errorf("finding account %s: %w", account, err)
	}
	if !found {
		return bank.User{}, fmt.Errorf("finding account %s: %w", account, ledger.ErrNotFound)
	}
	return user, nil
}

func exists(conn *sqlite.Conn, query string, args ...any) (bool, error) {
	found := false
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	return found, err
}

func insertUser(conn *sqlite.Conn, user bank.User, deletedAt *time.Time) error {
	var deleted any
	if deletedAt != nil {
		deleted = deletedAt.UnixNano()
	}
	return sqlitex.Execute(conn,
		`INSERT INTO users (`+userColumns+`, deleted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			string(user.AccountNumber), user.FirstName, user.LastName, user.Email, user.PasswordHash,
			boolInt(user.Admin), user.Balance, user.CreatedAt.UnixNano(), user.UpdatedAt.UnixNano(), deleted,
		}})
}

// appendEntry assigns the next ID, seals the entry onto its account's
// chain, and inserts it. The caller holds the write transaction.
func appendEntry(conn *sqlite.Conn, transaction bank.Transaction) (bank.Transaction, error) {
	err := sqlitex.Execute(conn, `SELECT COALESCE(MAX(id), 0) + 1 FROM transactions`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			transaction.ID = stmt.ColumnInt64(0)
			return nil
		}})
	if err != nil {
		return bank.Transaction{}, fmt.Errorf("allocating transaction id: %w", err)
	}

	var head bank.Digest
	err = sqlitex.Execute(conn,
		`SELECT digest FROM transactions WHERE account_number = ? ORDER BY id DESC LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{string(transaction.AccountNumber)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stmt.ColumnBytes(0, head[:])
				return nil
			},
		})
	if err != nil {
		return bank.Transaction{}, fmt.Errorf("reading chain head: %w", err)
	}

	if err := ledger.Seal(head, &transaction); err != nil {
		return bank.Transaction{}, err
	}
	if err := insertTransaction(conn, transaction); err != nil {
		return bank.Transaction{}, fmt.Errorf("inserting transaction: %w", err)
	}
	return transaction, nil
}

func insertTransaction(conn *sqlite.Conn, transaction bank.Transaction) error {
	return sqlitex.Execute(conn,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			transaction.ID, string(transaction.AccountNumber), string(transaction.Kind), transaction.Amount,
			string(transaction.Counterparty), transaction.Balance, transaction.Timestamp.UnixNano(),
			transaction.Digest[:],
		}})
}

func setBalance(conn *sqlite.Conn, account bank.AccountNumber, balance int64, now time.Time) error {
	err := sqlitex.Execute(conn, `UPDATE users SET balance = ?, updated_at = ? WHERE account_number = ?`,
		&sqlitex.ExecOptions{Args: []any{balance, now.UnixNano(), string(account)}})
	if err != nil {
		return fmt.Errorf("setting balance of %s: %w", account, err)
	}
	return nil
}

// scanUser reads the userColumns projection.
func scanUser(stmt *sqlite.Stmt) bank.User {
	return bank.User{
		AccountNumber: bank.AccountNumber(stmt.ColumnText(0)),
		FirstName:     stmt.ColumnText(1),
		LastName:      stmt.ColumnText(2),
		Email:         stmt.ColumnText(3),
		PasswordHash:  stmt.ColumnText(4),
		Admin:         stmt.ColumnInt64(5) != 0,
		Balance:       stmt.ColumnInt64(6),
		CreatedAt:     fromNanos(stmt.ColumnInt64(7)),
		UpdatedAt:     fromNanos(stmt.ColumnInt64(8)),
	}
}

// scanTransaction reads the transactionColumns projection.
func scanTransaction(stmt *sqlite.Stmt) bank.Transaction {
	transaction := bank.Transaction{
		ID:            stmt.ColumnInt64(0),
		AccountNumber: bank.AccountNumber(stmt.ColumnText(1)),
		Kind:          bank.TransactionKind(stmt.ColumnText(2)),
		Amount:        stmt.ColumnInt64(3),
		Counterparty:  bank.AccountNumber(stmt.ColumnText(4)),
		Balance:       stmt.ColumnInt64(5),
		Timestamp:     fromNanos(stmt.ColumnInt64(6)),
	}
	stmt.ColumnBytes(7, transaction.Digest[:])
	return transaction
}

func fromNanos(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}

func boolInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
