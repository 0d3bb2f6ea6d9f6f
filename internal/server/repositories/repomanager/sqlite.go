package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gameshelf/internal/dbx"
	"github.com/dmitrijs2005/gameshelf/internal/server/migrations"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/games"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Games(db dbx.DBTX) games.Repository {
	return games.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
