// Package server initializes and runs the backend application: it opens the
// database, runs migrations, wires the services and starts the HTTP API with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/stillmind/stillmind/internal/logging"
	"github.com/stillmind/stillmind/internal/server/config"
	"github.com/stillmind/stillmind/internal/server/httpapi"
	"github.com/stillmind/stillmind/internal/server/repositories/repomanager"
	"github.com/stillmind/stillmind/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	h := httpapi.NewHandler(
		services.NewUserService(db, rm, c),
		services.NewRecordService(db, rm),
		services.NewContentService(c),
	)

	srv := httpapi.NewServer(c.EndpointAddr, httpapi.NewRouter(h, []byte(c.SecretKey)), logger)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
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
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
