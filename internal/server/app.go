// Package server wires storage, attachment content and services behind the
// HTTP API and runs it until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/recipekeeper/internal/blobstore"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/config"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/services"

	hs "github.com/dmitrijs2005/recipekeeper/internal/server/http"
)

// Version is stamped into access logs; overridden with -ldflags at build time.
var Version = "dev"

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	httpServer *hs.HttpServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := repomanager.New(ctx, c.RepositoryOptions())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	blobs, err := blobstore.New(ctx, c.BlobOptions())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("content store init error: %w", err), repos.Close())
	}

	secret := []byte(c.SecretKey)
	if len(secret) == 0 {
		logger.Warn(ctx, "no secret key configured, sessions will not survive a restart")
		secret = common.GenerateRandByteArray(32)
	}

	accountService := services.NewAccountService(repos.Accounts(), cryptox.NewHasher(cryptox.DefaultParams), logger)
	submissionService := services.NewSubmissionService(repos.Submissions(), blobs, logger)

	httpServer := hs.NewHttpServer(accountService, submissionService, logger, hs.Options{
		JWTKey:          secret,
		SessionValidity: c.SessionValidityDuration,
		MaxUploadBytes:  c.MaxUploadBytes,
		AllowedOrigins:  c.AllowedOrigins,
		LogLevel:        logging.ParseLevel(c.LogLevel),
		Version:         Version,
	})

	return &App{config: c, logger: logger, repos: repos, httpServer: httpServer}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.httpServer.Run(ctx, app.config.HTTPAddr); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails, then closes the storage backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend, "content", app.config.ContentBackend)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
		runErr = errors.Join(runErr, err)
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
