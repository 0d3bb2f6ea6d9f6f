// Package games stores the game catalog.
package games

import (
	"context"

	"github.com/dmitrijs2005/gameshelf/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Game, error)
	Get(ctx context.Context, id int64) (*models.Game, error)
	Create(ctx context.Context, game *models.Game) (int64, error)
	// Update and Delete return common.ErrNotFound when no row has the id.
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id int64) error
	// SetCoverKey records the object key of an uploaded cover. Img is untouched.
	SetCoverKey(ctx context.Context, id int64, key string) error
}
