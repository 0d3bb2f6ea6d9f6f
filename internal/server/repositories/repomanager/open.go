package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	DefaultDSN = "sqlite://games.db"
)

// Dialect reports which backend a DSN selects. postgres:// and postgresql://
// URLs select PostgreSQL; anything else is treated as a SQLite location.
func Dialect(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// sqliteDSN turns "sqlite://path" (or a bare path) into a modernc.org/sqlite
// connection string with foreign keys enforced.
func sqliteDSN(dsn string) string {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		path = strings.TrimPrefix(DefaultDSN, "sqlite://")
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open connects to the database named by dsn, verifies the connection and
// returns it together with the matching RepositoryManager. Migrations are not
// applied.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	var (
		db  *sql.DB
		m   RepositoryManager
		err error
	)
	switch Dialect(dsn) {
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
		m = NewPostgresRepositoryManager()
	default:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		m = NewSQLiteRepositoryManager()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if _, ok := m.(*SQLiteRepositoryManager); ok {
		// One connection serializes writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return db, m, nil
}
