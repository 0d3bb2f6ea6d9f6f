package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/cryptox"
	"github.com/dmitrijs2005/gameshelf/internal/logging"
	"github.com/dmitrijs2005/gameshelf/internal/server/config"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gameshelf/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	handler http.Handler
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, m, err := repomanager.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, m.RunMigrations(ctx, db))

	cfg := &config.Config{}
	cfg.LoadDefaults()

	hasher := cryptox.NewArgon2idHasher(cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32})
	as, err := services.NewAuthService(db, m, cfg, services.WithPasswordHasher(hasher))
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	srv := NewHTTPServer(":0", logging.NewJSONLogger(logs, slog.LevelDebug), as,
		services.NewGameService(db, m), services.NewCoverService(db, m, cfg), true)

	return &testEnv{handler: srv.Router(), logs: logs}
}

type reqOpt func(*http.Request)

func bearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (e *testEnv) do(t *testing.T, method, path, body string, opts ...reqOpt) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (e *testEnv) register(t *testing.T, user, pass string) string {
	t.Helper()
	w, body := e.do(t, http.MethodPost, "/register", `{"username":"`+user+`","password":"`+pass+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["token"].(string)
}

func TestIndex(t *testing.T) {
	e := newTestEnv(t)

	w, body := e.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API OK", body["msg"])
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	w, body := e.do(t, http.MethodPost, "/register", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User alice registered and logged in", body["msg"])
	assert.NotEmpty(t, body["token"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, common.AccessTokenCookieName, cookies[0].Name)
	assert.Equal(t, body["token"], cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)

	w, body = e.do(t, http.MethodPost, "/register", `{"username":"alice","password":"other"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Registration not successful", body["msg"])

	for _, bad := range []string{`{"username":"bob"}`, `{"password":"x"}`, `not json`, `{"username":" ","password":"x"}`} {
		w, body = e.do(t, http.MethodPost, "/register", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "Missing username or password", body["msg"])
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice", "pw")

	w, body := e.do(t, http.MethodPost, "/login", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", body["msg"])
	assert.NotEmpty(t, body["token"])

	wrongPass, b1 := e.do(t, http.MethodPost, "/login", `{"username":"alice","password":"nope"}`)
	unknown, b2 := e.do(t, http.MethodPost, "/login", `{"username":"zed","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, "Bad username or password", b1["msg"])
	assert.Equal(t, b1, b2)
}

func TestMe_TokenTransports(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "alice", "pw")

	w, body := e.do(t, http.MethodGet, "/me", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body["user"])

	w, body = e.do(t, http.MethodGet, "/me", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: token})
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body["user"])

	w, _ = e.do(t, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = e.do(t, http.MethodGet, "/me", "", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "alice", "pw")

	w, body := e.do(t, http.MethodPost, "/logout", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", body["msg"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	w, _ = e.do(t, http.MethodGet, "/me", "", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	carol := e.register(t, "carol", "pw")
	dave := e.register(t, "dave", "pw")

	// dave cannot name carol.
	w, _ := e.do(t, http.MethodPost, "/delete_user", `{"username":"carol"}`, bearer(dave))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := e.do(t, http.MethodGet, "/me", "", bearer(carol))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "carol", body["user"])

	w, body = e.do(t, http.MethodPost, "/delete_user", "", bearer(carol))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User carol deleted", body["msg"])

	w, _ = e.do(t, http.MethodGet, "/me", "", bearer(carol))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = e.do(t, http.MethodPost, "/login", `{"username":"carol","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = e.do(t, http.MethodPost, "/delete_user", `{"username":"dave"}`, bearer(dave))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User dave deleted", body["msg"])
}

func TestGames_RequireToken(t *testing.T) {
	e := newTestEnv(t)

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/games"},
		{http.MethodPost, "/api/games"},
		{http.MethodPut, "/api/games/1"},
		{http.MethodDelete, "/api/games/1"},
		{http.MethodPost, "/api/games/1/cover"},
		{http.MethodPut, "/api/games/1/cover"},
		{http.MethodGet, "/api/games/1/cover"},
		{http.MethodGet, "/api/juegos"},
		{http.MethodPost, "/api/juegos"},
		{http.MethodPut, "/api/juegos/1"},
		{http.MethodDelete, "/api/juegos/1"},
	} {
		w, _ := e.do(t, r.method, r.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}
}

func TestGames_CRUD(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "alice", "pw")
	auth := bearer(token)

	w, body := e.do(t, http.MethodPost, "/api/games", `{"name":"Celeste","year":2018,"desc":"climb"}`, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(body["id"].(float64))

	w, _ = e.do(t, http.MethodGet, "/api/games", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	var games []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Celeste", games[0]["name"])
	assert.EqualValues(t, 2018, games[0]["year"])
	assert.Equal(t, "climb", games[0]["desc"])
	assert.Nil(t, games[0]["img"])

	path := "/api/games/" + strconv.FormatInt(id, 10)
	w, _ = e.do(t, http.MethodPut, path, `{"name":"Celeste","year":2019}`, auth)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodPut, "/api/games/999", `{"name":"x"}`, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = e.do(t, http.MethodPut, "/api/games/abc", `{"name":"x"}`, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, http.MethodDelete, path, "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodDelete, path, "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGames_LegacyPrefix(t *testing.T) {
	e := newTestEnv(t)
	auth := bearer(e.register(t, "alice", "pw"))

	w, body := e.do(t, http.MethodPost, "/api/juegos", `{"name":"Hades","year":2020}`, auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := strconv.FormatInt(int64(body["id"].(float64)), 10)

	w, _ = e.do(t, http.MethodGet, "/api/games", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	var games []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Hades", games[0]["name"])

	w, _ = e.do(t, http.MethodPut, "/api/juegos/"+id, `{"name":"Hades II"}`, auth)
	assert.Equal(t, http.StatusOK, w.Code)
	w, body = e.do(t, http.MethodPut, "/api/juegos/999", `{"name":"x"}`, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["msg"])

	w, _ = e.do(t, http.MethodDelete, "/api/juegos/"+id, "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodDelete, "/api/games/"+id, "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGames_Validation(t *testing.T) {
	e := newTestEnv(t)
	auth := bearer(e.register(t, "alice", "pw"))

	for _, bad := range []string{`{}`, `{"name":""}`, `{"name":5}`, `{"name":"x","year":"1999"}`, `{"name":"x","year":1.5}`, `[`} {
		w, _ := e.do(t, http.MethodPost, "/api/games", bad, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestCover_NotConfigured(t *testing.T) {
	e := newTestEnv(t)
	auth := bearer(e.register(t, "alice", "pw"))

	w, _ := e.do(t, http.MethodPost, "/api/games/1/cover", "", auth)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w, _ = e.do(t, http.MethodPut, "/api/games/1/cover", `{"key":"covers/1/x"}`, auth)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/games/1/cover", "", auth)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestCover_ConfirmRequiresKey(t *testing.T) {
	e := newTestEnv(t)
	auth := bearer(e.register(t, "alice", "pw"))

	for _, bad := range []string{`{}`, `{"key":""}`, `{"key":5}`, `[`} {
		w, body := e.do(t, http.MethodPut, "/api/games/1/cover", bad, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "Invalid request", body["msg"])
	}
}

func TestResponsesAreGzipped(t *testing.T) {
	e := newTestEnv(t)

	w, _ := e.do(t, http.MethodGet, "/", "", func(r *http.Request) { r.Header.Set("Accept-Encoding", "gzip") })
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"msg":"API OK"}`, string(raw))
}

func TestAccessLogOmitsSecrets(t *testing.T) {
	e := newTestEnv(t)
	token := e.register(t, "alice", "hunter2")
	e.do(t, http.MethodGet, "/me", "", bearer(token))

	logs := e.logs.String()
	assert.Contains(t, logs, `"path":"/me"`)
	assert.NotContains(t, logs, "hunter2")
	assert.NotContains(t, logs, token)
}
