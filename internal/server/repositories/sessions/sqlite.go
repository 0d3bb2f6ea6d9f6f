package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/dbx"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
)

// SQLiteRepository implements Repository for SQLite; times are unix seconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.UserName, s.ExpiresAt.Unix(), s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	var expires, created int64
	s := &models.Session{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, expires_at, created_at FROM sessions WHERE id = ?`,
		id).Scan(&s.ID, &s.UserName, &expires, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.ExpiresAt = time.Unix(expires, 0).UTC()
	s.CreatedAt = time.Unix(created, 0).UTC()
	return s, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByUserName(ctx context.Context, userName string) (int64, error) {
	return r.exec(ctx, `DELETE FROM sessions WHERE username = ?`, userName)
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
}

func (r *SQLiteRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
