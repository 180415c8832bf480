// Package server initializes and runs the spotlist backend. It wires the
// database, object storage and HTTP API together and handles graceful
// shutdown on OS signals.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/server/config"
	"github.com/dkotelnikov/spotlist/internal/server/httpapi"
	"github.com/dkotelnikov/spotlist/internal/server/repositories/repomanager"
	"github.com/dkotelnikov/spotlist/internal/server/services"
	"github.com/dkotelnikov/spotlist/internal/storage"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	repos    repomanager.RepositoryManager
	spotSvc  *services.SpotService
	photoSvc *services.PhotoService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	store, err := storage.NewS3Store(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		repos:    repos,
		spotSvc:  services.NewSpotService(db, repos, store, logger),
		photoSvc: services.NewPhotoService(db, repos, store, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.spotSvc, app.photoSvc, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
}
