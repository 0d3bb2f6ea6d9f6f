// Package sessions declares the server-side store of issued tokens. A token is
// valid only while its session row exists and has not expired.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/server/models"
)

// Repository defines operations for recording, looking up and revoking sessions.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *models.Session) error

	// Find looks up a session by id. Implementations return common.ErrNotFound
	// when the session is absent.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session by id. Deleting a non-existent session is not
	// an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUserName removes every session of a user.
	DeleteByUserName(ctx context.Context, userName string) (int64, error)

	// DeleteExpired removes sessions that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
