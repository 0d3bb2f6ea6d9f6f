package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/cryptox"
	"github.com/dmitrijs2005/gameshelf/internal/server/config"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// cheapHasher keeps argon2id but with parameters small enough for tests.
var cheapHasher = cryptox.NewArgon2idHasher(cryptox.Params{
	Time:    1,
	Memory:  8 * 1024,
	Threads: 1,
	SaltLen: 16,
	KeyLen:  32,
})

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

// newSQLiteStore opens a migrated SQLite database in a temp dir.
func newSQLiteStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	db, m, err := repomanager.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func newTestAuthService(t *testing.T, clock *fakeClock) (*AuthService, *sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	db, m := newSQLiteStore(t)

	s, err := NewAuthService(db, m, testConfig(), WithPasswordHasher(cheapHasher), WithClock(clock.Now))
	require.NoError(t, err)
	return s, db, m
}
