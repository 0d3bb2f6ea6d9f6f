package users

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

// SQLiteRepository implements Repository for SQLite. Timestamps are stored as
// unix seconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC().Truncate(time.Second)

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_verifier, created_at) VALUES (?, ?, ?) RETURNING id`,
		user.UserName, user.Verifier, now.Unix()).Scan(&user.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = now
	return user, nil
}

func (r *SQLiteRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	var createdAt int64
	user := &models.User{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_verifier, created_at FROM users WHERE username = ?`,
		userName).Scan(&user.ID, &user.UserName, &user.Verifier, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return user, nil
}

func (r *SQLiteRepository) DeleteByLogin(ctx context.Context, userName string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, userName)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}
