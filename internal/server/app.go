// Package server wires configuration, storage, services, background jobs and
// the HTTP transport into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gameshelf/internal/logging"
	"github.com/dmitrijs2005/gameshelf/internal/server/api"
	"github.com/dmitrijs2005/gameshelf/internal/server/config"
	"github.com/dmitrijs2005/gameshelf/internal/server/jobs"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gameshelf/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	authService  *services.AuthService
	gameService  *services.GameService
	coverService *services.CoverService
	scheduler    *cron.Cron
}

// NewApp opens the database named by the config, applies migrations and
// builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	as, err := services.NewAuthService(db, rm, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auth service init error: %w", err)
	}

	scheduler, err := jobs.NewScheduler(c.SessionCleanupSchedule, jobs.NewSessionCleanupJob(as, logger), logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", c.SessionCleanupSchedule, err)
	}

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		authService:  as,
		gameService:  services.NewGameService(db, rm),
		coverService: services.NewCoverService(db, rm, c),
		scheduler:    scheduler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := api.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.authService, app.gameService, app.coverService, app.config.CookieSecure)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the HTTP
// server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	gin.SetMode(gin.ReleaseMode)

	app.logger.Info(ctx, "Starting app...", "covers_enabled", app.config.CoversEnabled())

	app.initSignalHandler(cancelFunc)

	app.scheduler.Start()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	<-app.scheduler.Stop().Done()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
