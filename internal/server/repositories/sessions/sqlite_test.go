package sessions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sessions (
  id         TEXT    PRIMARY KEY,
  username   TEXT    NOT NULL,
  expires_at INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func newSession(id, user string, ttl time.Duration) *models.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Session{ID: id, UserName: user, ExpiresAt: now.Add(ttl), CreatedAt: now}
}

func TestSQLite_CreateFindDelete(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	s := newSession("s1", "alice", time.Hour)
	require.NoError(t, r.Create(ctx, s))

	got, err := r.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, r.Delete(ctx, "s1"))
	_, err = r.Find(ctx, "s1")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Delete(ctx, "s1"), "second delete is a no-op")
}

func TestSQLite_DeleteByUserName(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newSession("a1", "carol", time.Hour)))
	require.NoError(t, r.Create(ctx, newSession("a2", "carol", time.Hour)))
	require.NoError(t, r.Create(ctx, newSession("b1", "dave", time.Hour)))

	n, err := r.DeleteByUserName(ctx, "carol")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = r.Find(ctx, "b1")
	require.NoError(t, err, "other users' sessions survive")
}

func TestSQLite_DeleteExpired(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newSession("old", "alice", -time.Minute)))
	require.NoError(t, r.Create(ctx, newSession("new", "alice", time.Hour)))

	n, err := r.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.Find(ctx, "old")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.Find(ctx, "new")
	require.NoError(t, err)
}
