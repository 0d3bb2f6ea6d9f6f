package users

import (
	"context"
	"database/sql"
	"sync"
	"testing"

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
CREATE TABLE users (
  id                INTEGER PRIMARY KEY AUTOINCREMENT,
  username          TEXT    NOT NULL UNIQUE,
  password_verifier TEXT    NOT NULL,
  created_at        INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSQLite_CreateAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{UserName: "alice", Verifier: "v1"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := r.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "v1", got.Verifier)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLite_GetIsCaseSensitive(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{UserName: "Alice", Verifier: "v"})
	require.NoError(t, err)

	_, err = r.GetUserByLogin(ctx, "alice")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = r.Create(ctx, &models.User{UserName: "alice", Verifier: "v"})
	require.NoError(t, err, "usernames differing by case are distinct")
}

func TestSQLite_DuplicateIsConflict(t *testing.T) {
	db := setupSQLite(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{UserName: "bob", Verifier: "v"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{UserName: "bob", Verifier: "other"})
	require.ErrorIs(t, err, common.ErrConflict)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'bob'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLite_ConcurrentCreateSameName(t *testing.T) {
	db := setupSQLite(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, taken int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(ctx, &models.User{UserName: "bob", Verifier: "v"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, common.ErrConflict):
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, taken)
}

func TestSQLite_IDsAreNotReused(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	first, err := r.Create(ctx, &models.User{UserName: "erin", Verifier: "v"})
	require.NoError(t, err)

	removed, err := r.DeleteByLogin(ctx, "erin")
	require.NoError(t, err)
	require.True(t, removed)

	second, err := r.Create(ctx, &models.User{UserName: "erin", Verifier: "v"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestSQLite_DeleteAbsent(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))

	removed, err := r.DeleteByLogin(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, removed)
}
