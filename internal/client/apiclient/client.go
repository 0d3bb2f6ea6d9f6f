// Package apiclient talks to the GameShelf HTTP API. The bearer token returned
// by register or login lives only in memory and is dropped on logout.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/client/models"
	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/netx"
	"github.com/sethvargo/go-retry"
)

// Client is the surface the CLI needs from the server.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, password string) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Me(ctx context.Context) (string, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	AddGame(ctx context.Context, g *models.Game) (int64, error)
	UploadCover(ctx context.Context, gameID int64, data []byte) (string, error)
	CoverURL(ctx context.Context, gameID int64) (string, error)
	Logout(ctx context.Context) error
	DeleteMe(ctx context.Context) (string, error)
}

// Session describes the token held after a successful register or login.
type Session struct {
	UserName  string
	ExpiresAt time.Time
}

type HTTPClient struct {
	baseURL string
	http    *http.Client

	// backoff drives retries of idempotent reads while the server is
	// unreachable.
	backoff func() retry.Backoff

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the server at baseURL, e.g.
// "http://127.0.0.1:5000".
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
		},
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Msg       string    `json:"msg"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/", nil, nil, false)
	})
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (*Session, error) {
	return c.authenticate(ctx, "/register", username, password)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*Session, error) {
	return c.authenticate(ctx, "/login", username, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, username, password string) (*Session, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, path, credentials{Username: username, Password: password}, &resp, false); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("empty token in %s response", path)
	}

	c.setToken(resp.Token)
	return &Session{UserName: strings.TrimSpace(username), ExpiresAt: resp.ExpiresAt}, nil
}

// Me returns the username the server associates with the held token.
func (c *HTTPClient) Me(ctx context.Context) (string, error) {
	var resp struct {
		User string `json:"user"`
	}
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/me", nil, &resp, true)
	})
	if err != nil {
		return "", err
	}
	return resp.User, nil
}

func (c *HTTPClient) ListGames(ctx context.Context) ([]*models.Game, error) {
	var games []*models.Game
	err := c.withRetry(ctx, func(ctx context.Context) error {
		games = nil
		return c.do(ctx, http.MethodGet, "/api/games", nil, &games, true)
	})
	if err != nil {
		return nil, err
	}
	return games, nil
}

// AddGame creates g on the server and returns its id.
func (c *HTTPClient) AddGame(ctx context.Context, g *models.Game) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/games", g, &resp, true); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

type coverUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadCover asks the server for a presigned upload URL for the game's cover,
// PUTs data to it and then tells the server to attach the stored object to
// the game. It returns the object key the cover was stored under.
func (c *HTTPClient) UploadCover(ctx context.Context, gameID int64, data []byte) (string, error) {
	path := fmt.Sprintf("/api/games/%d/cover", gameID)

	var up coverUpload
	if err := c.do(ctx, http.MethodPost, path, nil, &up, true); err != nil {
		return "", err
	}
	if up.URL == "" || up.Key == "" {
		return "", errors.New("incomplete upload grant in response")
	}

	if err := netx.UploadToPresignedURL(ctx, c.http, up.URL, data); err != nil {
		return "", err
	}

	confirm := struct {
		Key string `json:"key"`
	}{Key: up.Key}
	if err := c.do(ctx, http.MethodPut, path, confirm, nil, true); err != nil {
		return "", err
	}
	return up.Key, nil
}

// CoverURL returns a short-lived download URL for the game's cover.
func (c *HTTPClient) CoverURL(ctx context.Context, gameID int64) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/games/%d/cover", gameID), nil, &resp, true)
	})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Logout revokes the server session and forgets the token. The token is
// dropped even if the server could not be reached.
func (c *HTTPClient) Logout(ctx context.Context) error {
	defer c.setToken("")
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, true)
}

// DeleteMe deletes the account behind the held token and returns the
// server's confirmation message.
func (c *HTTPClient) DeleteMe(ctx context.Context) (string, error) {
	var resp msgResponse
	if err := c.do(ctx, http.MethodPost, "/delete_user", nil, &resp, true); err != nil {
		return "", err
	}
	c.setToken("")
	return resp.Msg, nil
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

// forgetToken drops t unless a newer login has already replaced it.
func (c *HTTPClient) forgetToken(t string) {
	c.mu.Lock()
	if c.token == t {
		c.token = ""
	}
	c.mu.Unlock()
}

func (c *HTTPClient) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// withRetry retries f while the server is unavailable.
func (c *HTTPClient) withRetry(ctx context.Context, f func(ctx context.Context) error) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		err := f(ctx)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// do sends one JSON request. A 401 on an authed call means the session is
// gone server side, so the token is forgotten and later calls fail with
// ErrNotLoggedIn.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var token string
	if authed {
		token = c.getToken()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if authed && resp.StatusCode == http.StatusUnauthorized {
			c.forgetToken(token)
		}
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, data []byte) error {
	var m msgResponse
	_ = json.Unmarshal(data, &m)

	switch status {
	case http.StatusUnauthorized:
		if m.Msg == "" {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, m.Msg)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, m.Msg)
	}

	if m.Msg == "" {
		m.Msg = http.StatusText(status)
	}
	return &APIError{Status: status, Msg: m.Msg}
}
