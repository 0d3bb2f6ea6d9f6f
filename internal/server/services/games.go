package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/repomanager"
)

// GameInput is the writable part of a game.
type GameInput struct {
	Name        string
	Year        *int
	Description *string
	Img         *string
	URL         *string
	Play        *string
}

func (in *GameInput) validate() error {
	if in == nil || strings.TrimSpace(in.Name) == "" {
		return common.ErrInvalidInput
	}
	return nil
}

func (in *GameInput) toModel(id int64) *models.Game {
	return &models.Game{
		ID:          id,
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		Img:         in.Img,
		URL:         in.URL,
		Play:        in.Play,
	}
}

// GameService manages the shared game catalog. Callers are expected to have
// resolved a principal before reaching it.
type GameService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewGameService(db *sql.DB, m repomanager.RepositoryManager) *GameService {
	return &GameService{db: db, repomanager: m}
}

func (s *GameService) List(ctx context.Context) ([]*models.Game, error) {
	games, err := s.repomanager.Games(s.db).List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return games, nil
}

func (s *GameService) Create(ctx context.Context, in *GameInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	id, err := s.repomanager.Games(s.db).Create(ctx, in.toModel(0))
	if err != nil {
		return 0, storeError(err)
	}
	return id, nil
}

// Update replaces every writable field of the game; it returns
// common.ErrNotFound when there is no such game.
func (s *GameService) Update(ctx context.Context, id int64, in *GameInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	if err := s.repomanager.Games(s.db).Update(ctx, in.toModel(id)); err != nil {
		return notFoundOrStore(err)
	}
	return nil
}

func (s *GameService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Games(s.db).Delete(ctx, id); err != nil {
		return notFoundOrStore(err)
	}
	return nil
}

func notFoundOrStore(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotFound
	}
	return storeError(err)
}
