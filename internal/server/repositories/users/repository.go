// Package users is the credential store: durable, unique-keyed mapping of
// username to password verifier.
package users

import (
	"context"

	"github.com/dmitrijs2005/gameshelf/internal/server/models"
)

// Repository stores User records. Implementations must rely on the database
// UNIQUE constraint for username uniqueness, never on a prior lookup.
type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. An existing username
	// yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the user with exactly this username or
	// common.ErrNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// DeleteByLogin removes the user and reports whether a row existed.
	DeleteByLogin(ctx context.Context, login string) (bool, error)
}
