package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/blogadmin/internal/admin/http"
	"github.com/aussiebroadwan/blogadmin/internal/admin/metrics"
	"github.com/aussiebroadwan/blogadmin/internal/admin/security"
	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store/drivers/mysql"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store/drivers/sqlite"
	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via -ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the admin security service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager
	metrics    *metrics.Metrics

	userService         *service.UserService
	authService         *service.AuthService
	totpService         *service.TOTPService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router

	releaseOnce sync.Once
	releaseErr  error
}

// New creates an Application with every dependency initialised, the
// database migrated and the first admin account created.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "blogadmin",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.initServices()

	if err := app.bootstrap(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("blogadmin starting",
		"addr", app.cfg.HTTPAddr,
		"version", BuildVersion,
		"db_driver", app.cfg.DBDriver,
	)
	if app.cfg.PermitAll {
		app.logger.Warn("SECURITY_PERMIT_ALL is enabled, every path is reachable without authentication")
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		releaseErr := app.release()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return releaseErr
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down blogadmin...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.release(); err != nil {
		return err
	}

	app.logger.Info("blogadmin stopped")
	return nil
}

// release stops background work and closes the database. Only the first
// call does anything.
func (app *Application) release() error {
	app.releaseOnce.Do(func() {
		app.housekeepingService.Stop()

		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			app.releaseErr = err
		}
	})
	return app.releaseErr
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DBDriver {
	case DriverMySQL:
		db, err = mysql.NewStore(app.cfg.DatabaseDSN)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

func (app *Application) initServices() {
	encoder := cryptox.NewPasswordEncoder(app.cfg.BcryptCost)

	app.userService = &service.UserService{Store: app.db, Encoder: encoder}
	app.totpService = &service.TOTPService{Store: app.db, Issuer: app.cfg.Issuer}
	app.authService = &service.AuthService{
		Details:       &service.UserDetailsService{Users: app.userService},
		Store:         app.db,
		Encoder:       encoder,
		KeyManager:    app.keyManager,
		TOTP:          app.totpService,
		Metrics:       app.metrics,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshWindow: app.cfg.RefreshWindow,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Encoder: encoder}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.LoginLogRetention,
	)
}

// bootstrap creates the first admin account on an empty database.
func (app *Application) bootstrap(ctx context.Context) error {
	ctx = slogx.WithContext(ctx, app.logger)

	res, err := app.bootstrapService.Bootstrap(ctx, app.cfg.AdminUsername, app.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if !res.Created {
		return nil
	}

	if res.GeneratedPassword != "" {
		// Shown once; only the bcrypt hash is stored.
		app.logger.Warn("generated password for the first admin account, change it after logging in",
			"username", res.Username,
			"password", res.GeneratedPassword,
		)
	}
	return nil
}

func (app *Application) initHTTP() error {
	proxies, err := httpx.NewClientIPResolver(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	chain := security.NewChain(
		security.DefaultRules(app.cfg.PermitAll),
		&security.JWTFilter{
			Verifier: app.keyManager.Verifier,
			Users:    app.authService.Details,
		},
		app.metrics,
	)

	router := httpapi.NewRouter(
		chain,
		app.keyManager.KeySet,
		app.metrics,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.StaticDir = app.cfg.StaticDir
	router.Proxies = proxies
	router.AuthService = app.authService
	router.UserService = app.userService
	router.TOTPService = app.totpService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
