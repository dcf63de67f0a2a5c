// Package server wires the dashboard together: it opens the database, runs
// migrations, builds the services and serves HTTP until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dashboard/internal/dbx"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
	"github.com/dmitrijs2005/dashboard/internal/server/config"
	"github.com/dmitrijs2005/dashboard/internal/server/httpserver"
	"github.com/dmitrijs2005/dashboard/internal/server/metrics"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dashboard/internal/server/services"
	"github.com/dmitrijs2005/dashboard/internal/server/viewcache"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpserver.HTTPServer
}

// NewLogger builds the process logger described by c.
func NewLogger(w io.Writer, c *config.Config) *logging.SlogLogger {
	return logging.New(w, c.LogFormat, logging.ParseLevel(c.LogLevel))
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	sl := NewLogger(os.Stdout, c)
	slog.SetDefault(sl.Slog())

	return newApp(ctx, c, sl)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dialect, err := c.Dialect()
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	cache := viewcache.New(c.ViewCacheSize)
	hasher := auth.NewBcryptHasher()
	sessions := auth.NewSessionManager([]byte(c.SecretKey), c.SessionValidityDuration)

	is := services.NewInvoiceService(db, rm, cache, logger)
	us := services.NewUserService(db, rm, hasher, cache, logger)
	as := services.NewAuthService(auth.NewCredentialsProvider(rm.Users(db), hasher, sessions), logger)

	srv := httpserver.NewHTTPServer(
		httpserver.Options{Address: c.EndpointAddrHTTP, SecureCookie: c.SecureCookie},
		logger, is, us, as, sessions, cache, metrics.New(),
	)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
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

// Run serves until ctx is cancelled or a shutdown signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	runErr := app.server.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server stopped", "error", runErr)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
