// Package services contains server-side business logic. AuthService is the
// only place that sees plaintext passwords: it registers users, checks
// credentials, and issues, verifies and revokes access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/cryptox"
	"github.com/dmitrijs2005/gameshelf/internal/dbx"
	"github.com/dmitrijs2005/gameshelf/internal/server/auth"
	"github.com/dmitrijs2005/gameshelf/internal/server/config"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Token is a signed access token handed to a client.
type Token struct {
	Value     string
	UserName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the identity resolved from a valid token.
type Principal struct {
	UserName  string
	SessionID string
	ExpiresAt time.Time
}

type AuthService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	hasher                cryptox.PasswordHasher
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	now                   func() time.Time

	// dummyVerifier is checked when the user does not exist so that login
	// takes the same time either way.
	dummyVerifier string
}

type AuthOption func(*AuthService)

// WithPasswordHasher replaces the default argon2id hasher.
func WithPasswordHasher(h cryptox.PasswordHasher) AuthOption {
	return func(s *AuthService) { s.hasher = h }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, opts ...AuthOption) (*AuthService, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: empty secret key", common.ErrInvalidInput)
	}
	if cfg.TokenValidityDuration <= 0 {
		return nil, fmt.Errorf("%w: token validity must be positive", common.ErrInvalidInput)
	}

	s := &AuthService{
		db:                    db,
		repomanager:           m,
		hasher:                cryptox.NewArgon2idHasher(cryptox.DefaultParams),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy verifier: %w", err)
	}
	s.dummyVerifier = dummy

	return s, nil
}

// Register creates the user and a first session in one transaction and returns
// its token. Usernames and passwords are trimmed; either being empty is
// ErrInvalidInput. An existing username is ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) (*Token, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, common.ErrInvalidInput
	}

	verifier, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrInternal, err)
	}

	var token *Token
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &models.User{UserName: username, Verifier: verifier}
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		var err error
		token, err = s.issueToken(ctx, tx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrUsernameTaken
		}
		return nil, storeError(err)
	}

	return token, nil
}

// Login checks the credentials and issues a token. An unknown user and a
// wrong password both return exactly common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, common.ErrInvalidInput
	}

	verifier := s.dummyVerifier
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		verifier = user.Verifier
	case !errors.Is(err, common.ErrNotFound):
		return nil, storeError(err)
	}

	ok, verr := s.hasher.Verify(password, verifier)
	if user == nil || verr != nil || !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, s.db, user.UserName)
	if err != nil {
		return nil, storeError(err)
	}
	return token, nil
}

// IssueToken opens a new session for an existing user. An unknown user is
// common.ErrNotFound.
func (s *AuthService) IssueToken(ctx context.Context, username string) (*Token, error) {
	if _, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, storeError(err)
	}

	token, err := s.issueToken(ctx, s.db, username)
	if err != nil {
		return nil, storeError(err)
	}
	return token, nil
}

// VerifyToken resolves a token to its principal. Anything short of a
// well-formed, correctly signed, unexpired token backed by a live session of
// the same user is common.ErrUnauthorized. A failing store is
// common.ErrStoreUnavailable, never a principal.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	now := s.now()

	claims, err := auth.ParseToken(token, s.jwtSecret, now)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, storeError(err)
	}

	if session.UserName != claims.UserName() || session.IsExpiredAt(now) {
		return nil, common.ErrUnauthorized
	}

	return &Principal{
		UserName:  session.UserName,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// CurrentPrincipal returns the username a token belongs to.
func (s *AuthService) CurrentPrincipal(ctx context.Context, token string) (string, error) {
	p, err := s.VerifyToken(ctx, token)
	if err != nil {
		return "", err
	}
	return p.UserName, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	p, err := s.VerifyToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.repomanager.Sessions(s.db).Delete(ctx, p.SessionID); err != nil {
		return storeError(err)
	}
	return nil
}

// DeleteUser removes the account that token belongs to, along with all of its
// sessions. The target is never taken from the caller.
func (s *AuthService) DeleteUser(ctx context.Context, token string) (bool, error) {
	p, err := s.VerifyToken(ctx, token)
	if err != nil {
		return false, err
	}

	var removed bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Sessions(tx).DeleteByUserName(ctx, p.UserName); err != nil {
			return err
		}

		var err error
		removed, err = s.repomanager.Users(tx).DeleteByLogin(ctx, p.UserName)
		return err
	})
	if err != nil {
		return false, storeError(err)
	}

	return removed, nil
}

// PurgeExpiredSessions deletes sessions whose expiry has passed.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

// --- helpers below ---

func (s *AuthService) issueToken(ctx context.Context, db dbx.DBTX, username string) (*Token, error) {
	now := s.now().UTC().Truncate(time.Second)
	session := &models.Session{
		ID:        uuid.NewString(),
		UserName:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenValidityDuration),
	}

	value, err := auth.GenerateToken(username, session.ID, s.jwtSecret, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", common.ErrInternal, err)
	}

	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return nil, err
	}

	return &Token{
		Value:     value,
		UserName:  username,
		IssuedAt:  session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// storeError marks err as a store failure unless it already carries one of
// the service-level sentinels.
func storeError(err error) error {
	if errors.Is(err, common.ErrInternal) || errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}
