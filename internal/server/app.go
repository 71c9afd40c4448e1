// Package server initializes and runs the scriptkeeper API server.
// It picks the storage backend, applies migrations, wires services and
// serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/scriptkeeper/internal/logging"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/config"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	repomanager    repomanager.RepositoryManager
	userService    *services.UserService
	projectService *services.ProjectService
	scriptService  *services.ScriptService
}

// openStorage is a seam for tests.
var openStorage = func(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.Storage == config.StorageMemory {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	m, err := repomanager.OpenPostgres(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := m.Ping(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return m, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	m, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us, err := services.NewUserService(m, c)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	return &App{
		config:         c,
		logger:         logger,
		repomanager:    m,
		userService:    us,
		projectService: services.NewProjectService(m),
		scriptService:  services.NewScriptService(m),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.config.ShutdownTimeout, app.logger,
		app.userService, app.projectService, app.scriptService, app.repomanager)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until the server stops, either on a signal, on ctx
// cancellation or after a fatal server error.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(context.Background(), "storage close error", "error", err.Error())
	}
	app.logger.Info(context.Background(), "App stopped")
}
