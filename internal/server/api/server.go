// Package api exposes the services over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/logging"
	"github.com/dmitrijs2005/gameshelf/internal/server/models"
	"github.com/dmitrijs2005/gameshelf/internal/server/services"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// AuthService is the part of services.AuthService the handlers need.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*services.Token, error)
	Login(ctx context.Context, username, password string) (*services.Token, error)
	VerifyToken(ctx context.Context, token string) (*services.Principal, error)
	Logout(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, token string) (bool, error)
}

type GameService interface {
	List(ctx context.Context) ([]*models.Game, error)
	Create(ctx context.Context, in *services.GameInput) (int64, error)
	Update(ctx context.Context, id int64, in *services.GameInput) error
	Delete(ctx context.Context, id int64) error
}

type CoverService interface {
	PresignUpload(ctx context.Context, gameID int64) (*services.CoverUpload, error)
	ConfirmUpload(ctx context.Context, gameID int64, key string) error
	GameCoverURL(ctx context.Context, gameID int64) (string, error)
}

// gamePrefixes are the mount points of the games API. /api/juegos is kept
// for clients written against the first release.
var gamePrefixes = []string{"/api/games", "/api/juegos"}

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address      string
	logger       logging.Logger
	auth         AuthService
	games        GameService
	covers       CoverService
	cookieSecure bool
}

func NewHTTPServer(a string, l logging.Logger, as AuthService, gs GameService, cs CoverService, cookieSecure bool) *HTTPServer {
	return &HTTPServer{
		address:      a,
		logger:       l.With("module", "http_server"),
		auth:         as,
		games:        gs,
		covers:       cs,
		cookieSecure: cookieSecure,
	}
}

// Router builds the gin engine with every route registered.
func (s *HTTPServer) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.accessLogMiddleware(), gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/", s.index)
	engine.POST("/register", s.register)
	engine.POST("/login", s.login)

	authed := engine.Group("/", s.accessTokenMiddleware())
	authed.POST("/logout", s.logout)
	authed.POST("/delete_user", s.deleteUser)
	authed.GET("/me", s.me)

	for _, prefix := range gamePrefixes {
		games := authed.Group(prefix)
		games.GET("", s.listGames)
		games.POST("", s.createGame)
		games.PUT("/:id", s.updateGame)
		games.DELETE("/:id", s.deleteGame)
		games.POST("/:id/cover", s.uploadCover)
		games.PUT("/:id/cover", s.confirmCover)
		games.GET("/:id/cover", s.coverURL)
	}

	return engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
