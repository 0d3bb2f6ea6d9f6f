// Package dbx holds the database/sql plumbing the games and sessions
// repositories share on both the PostgreSQL and SQLite backends.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX lets a repository run either on the pool or inside WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in one transaction, committing only when fn returns nil.
// A panic in fn still rolls back before it propagates.
//
// SQLite runs with a single connection, so fn must stick to tx: going
// through db inside fn deadlocks.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// No-op once Commit has run.
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
