// Package server wires the application together: configuration, database,
// session registry, services, and the HTTP API, plus signal handling for
// graceful shutdown.
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

	"github.com/dsmirnov/padkeeper/internal/logging"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/directory"
	"github.com/dsmirnov/padkeeper/internal/server/httpapi"
	"github.com/dsmirnov/padkeeper/internal/server/recovery"
	"github.com/dsmirnov/padkeeper/internal/server/repositories/repomanager"
	"github.com/dsmirnov/padkeeper/internal/server/services"
	"github.com/dsmirnov/padkeeper/internal/server/session"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	sessionService *services.SessionService
	accessService  *services.AccessService
	accountService *services.AccountService
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var dir directory.Verifier
	if cfg.AuthBackend == config.BackendLDAP {
		dir = directory.NewClient(cfg.Directory())
	}

	registry := session.NewRegistry()
	tokens := recovery.NewStore()

	creds := services.NewCredentialService(db, rm, dir, cfg)
	sessions := services.NewSessionService(registry, creds, cfg)
	access := services.NewAccessService(db, rm, cfg)
	accounts := services.NewAccountService(db, rm, registry, tokens, cfg)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		sessionService: sessions,
		accessService:  access,
		accountService: accounts,
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

	s := httpapi.NewServer(app.config, app.logger, app.sessionService, app.accessService, app.accountService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

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
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
