package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/dbx"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
)

// PostgresRepository implements game storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT id, name, year, description, img, url, play, cover_key FROM games ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT id, name, year, description, img, url, play, cover_key FROM games WHERE id = $1`
	return scanGame(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.Game) (int64, error) {
	query := `
		INSERT INTO games (name, year, description, img, url, play)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		g.Name, nullInt(g.Year), nullable(g.Description), nullable(g.Img), nullable(g.URL), nullable(g.Play)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Update(ctx context.Context, g *models.Game) error {
	query := `
		UPDATE games
		SET name = $1, year = $2, description = $3, img = $4, url = $5, play = $6
		WHERE id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		g.Name, nullInt(g.Year), nullable(g.Description), nullable(g.Img), nullable(g.URL), nullable(g.Play), g.ID)
	return expectOne(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	return expectOne(res, err)
}

func (r *PostgresRepository) SetCoverKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE games SET cover_key = $1 WHERE id = $2`, key, id)
	return expectOne(res, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(s rowScanner) (*models.Game, error) {
	var (
		g                    models.Game
		year                 sql.NullInt64
		desc, img, url, play sql.NullString
		coverKey             sql.NullString
	)
	if err := s.Scan(&g.ID, &g.Name, &year, &desc, &img, &url, &play, &coverKey); err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		g.Year = &y
	}
	g.Description = nullString(desc)
	g.Img = nullString(img)
	g.URL = nullString(url)
	g.Play = nullString(play)
	g.CoverKey = nullString(coverKey)
	return &g, nil
}

func scanGame(row *sql.Row) (*models.Game, error) {
	g, err := scanInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func scanGames(rows *sql.Rows) ([]*models.Game, error) {
	result := []*models.Game{}
	for rows.Next() {
		g, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return result, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// nullInt and nullable turn optional fields into driver values; nil becomes NULL.
func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
