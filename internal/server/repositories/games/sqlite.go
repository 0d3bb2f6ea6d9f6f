package games

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gameshelf/internal/dbx"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
)

// SQLiteRepository shares row scanning with the PostgreSQL implementation;
// only the placeholders differ.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, year, description, img, url, play, cover_key FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	return scanGame(r.db.QueryRowContext(ctx,
		`SELECT id, name, year, description, img, url, play, cover_key FROM games WHERE id = ?`, id))
}

func (r *SQLiteRepository) Create(ctx context.Context, g *models.Game) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, year, description, img, url, play) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		g.Name, nullInt(g.Year), nullable(g.Description), nullable(g.Img), nullable(g.URL), nullable(g.Play)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, g *models.Game) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET name = ?, year = ?, description = ?, img = ?, url = ?, play = ? WHERE id = ?`,
		g.Name, nullInt(g.Year), nullable(g.Description), nullable(g.Img), nullable(g.URL), nullable(g.Play), g.ID)
	return expectOne(res, err)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	return expectOne(res, err)
}

func (r *SQLiteRepository) SetCoverKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE games SET cover_key = ? WHERE id = ?`, key, id)
	return expectOne(res, err)
}
