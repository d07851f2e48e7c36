// Package app initializes and runs the lost-and-found service. It wires
// configuration, logging, the storage backend, visitor identification and
// the HTTP router, and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lostfound/internal/auth"
	"lostfound/internal/config"
	"lostfound/internal/db/memstorage"
	"lostfound/internal/db/postgresdb"
	"lostfound/internal/ipchecker"
	"lostfound/internal/logger"
	"lostfound/internal/models"
	"lostfound/internal/router"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *models.User) (string, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, bool, error)
}

type categoryKeeper interface {
	CreateCategory(ctx context.Context, name string, description *string) (*models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*models.Category, bool, error)
}

type itemKeeper interface {
	CreateItem(ctx context.Context, newItem models.NewItem) (*models.Item, error)
	GetAllItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, bool, error)
	UpdateItem(ctx context.Context, itemID string, patch models.ItemPatch) (*models.Item, bool, error)
	DeleteItem(ctx context.Context, itemID string) (bool, error)
}

type statsKeeper interface {
	GetNumberOfItems(ctx context.Context) (int64, error)
	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type storage interface {
	userKeeper
	categoryKeeper
	itemKeeper
	statsKeeper
	Ping(ctx context.Context) error
	Close() error
}

// App encapsulates the configuration, storage backend and HTTP handler
// needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage
	httpHandler http.Handler
}

// New initializes an App by loading configuration, initializing the logger,
// selecting the storage backend and assembling the router.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	if err = logger.Init(app.cfg.LogLevel); err != nil {
		return nil, err
	}

	app.db, err = getStorageByConfig(app.cfg)
	if err != nil {
		return nil, err
	}

	authCookieSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.AuthCookieSigningSecretKey)
	if err != nil {
		return nil, err
	}

	ipChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		app.db,
		auth.New(app.db, app.cfg.AuthCookieName, authCookieSigningSecretKey),
		ipChecker,
	)

	return app, nil
}

// Run starts the HTTP server and blocks until a termination signal arrives
// or the server fails, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getStorageByConfig(cfg *config.Config) (storage, error) {
	if cfg.DatabaseDSN != "" {
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)
	}

	return memstorage.New()
}
