// Package repomanager vends dialect-specific repositories and runs the
// matching schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/gameshelf/internal/dbx"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/games"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Games(db dbx.DBTX) games.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex
