// Package server wires the sync server together: it opens the database,
// applies migrations, and runs the HTTP and gRPC endpoints until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/cryptox"
	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/dmitrijs2005/reelsync/internal/server/archive"
	"github.com/dmitrijs2005/reelsync/internal/server/config"
	"github.com/dmitrijs2005/reelsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/reelsync/internal/server/rest"
	"github.com/dmitrijs2005/reelsync/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/reelsync/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

var (
	openDB               = repomanager.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newS3Archiver        = func(ctx context.Context, c archive.S3Config) (archive.Archiver, error) { return archive.NewS3Archiver(ctx, c) }
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	syncService *services.SyncService
	userService *services.UserService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.SecretKey == "" {
		secret, err := cryptox.RandomSecret(32)
		if err != nil {
			return nil, fmt.Errorf("secret key: %w", err)
		}
		c.SecretKey = secret
		logger.Warn(ctx, "no secret key configured, issued tokens are valid until restart")
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var arch archive.Archiver = archive.Nop{}
	if c.ArchiveMetadata {
		arch, err = newS3Archiver(ctx, archive.S3Config{
			User:     c.S3RootUser,
			Password: c.S3RootPassword,
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Endpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		syncService: services.NewSyncService(db, rm, arch, logger),
		userService: services.NewUserService(db, rm, c),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	h := rest.NewHandler(app.syncService, app.userService, app.logger)
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           rest.NewRouter(app.logger, h, app.userService, app.config.RequireAuth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func (app *App) startGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.syncService, app.userService, app.config.RequireAuth)
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, a termination signal arrives or one
// of the endpoints fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, name+" server failed", "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	if app.config.EndpointAddrHTTP != "" {
		start("http", app.startHTTPServer)
	}
	if app.config.EndpointAddrGRPC != "" {
		start("grpc", app.startGRPCServer)
	}
	wg.Wait()

	errs = append(errs, app.db.Close())
	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(errs...)
}
