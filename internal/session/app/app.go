package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/sessiond/internal/session/http"
	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/internal/session/store"
	"github.com/aussiebroadwan/sessiond/internal/session/store/drivers/postgres"
	"github.com/aussiebroadwan/sessiond/internal/session/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// ErrStoreUnavailable means the credential store could not be opened or
// migrated. The service does not start without it.
var ErrStoreUnavailable = errors.New("credential store unavailable")

type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	metrics *metrics.Metrics

	sessions     *service.SessionService
	housekeeping *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New validates cfg, opens and migrates the store, and wires the services and
// HTTP server. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	return newWithLogger(cfg, slogx.New(slogx.Config{
		Service: "sessiond",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

func newWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	ctx := context.Background()
	if err := app.initStore(ctx); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.seedAccount(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Run serves until the server fails or SIGINT/SIGTERM arrives.
func (app *Application) Run() error {
	if app.housekeeping != nil {
		app.housekeeping.Start()
	}

	app.logger.Info("session service starting",
		"port", app.cfg.Port,
		"store", app.cfg.StoreDriver,
		"access_ttl", app.cfg.AccessTTL.String(),
		"renewal_ttl", app.cfg.RenewalTTL.String(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down session service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeeping != nil {
		app.housekeeping.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("session service stopped")
	return nil
}

// Handler exposes the router, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Close releases the store without touching the HTTP server.
func (app *Application) Close() error { return app.db.Close() }

func (app *Application) initStore(ctx context.Context) error {
	db, err := openStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: apply migrations: %w", ErrStoreUnavailable, err)
	}

	app.db = db
	app.logger.Info("store migrations applied", "driver", app.cfg.StoreDriver)
	return nil
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	if cfg.StoreDriver == DriverPostgres {
		pg, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}

	lite, err := sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	if err != nil {
		return nil, err
	}
	return lite, nil
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	codec, err := jwtx.NewCodec([]byte(app.cfg.SigningSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.sessions = &service.SessionService{
		Store:      app.db,
		Codec:      codec,
		Hasher:     cryptox.NewHasher(pepper),
		AccessTTL:  app.cfg.AccessTTL,
		RenewalTTL: app.cfg.RenewalTTL,
	}

	if app.cfg.HousekeepingInterval > 0 {
		app.housekeeping = service.NewHousekeepingService(app.db, app.logger, app.cfg.HousekeepingInterval)
		app.housekeeping.Now = codec.Now
		app.housekeeping.Metrics = app.metrics
	}
	return nil
}

func (app *Application) seedAccount(ctx context.Context) error {
	if app.cfg.SeedUsername == "" {
		return nil
	}

	generated, created, err := app.sessions.EnsureSeedAccount(ctx, app.cfg.SeedUsername, app.cfg.SeedPassword)
	if err != nil {
		return fmt.Errorf("failed to create seed account: %w", err)
	}

	switch {
	case !created:
		app.logger.Info("seed account already exists", "username", app.cfg.SeedUsername)
	case generated != "":
		// Only the hash is stored, so the file is the one copy of the password.
		if err := cryptox.WriteSecretFile(app.cfg.SeedPasswordFile, generated); err != nil {
			return fmt.Errorf("seed account %q created but its generated password could not be saved: %w",
				app.cfg.SeedUsername, err)
		}
		app.logger.Warn("seed account created with generated password",
			"username", app.cfg.SeedUsername,
			"password_file", app.cfg.SeedPasswordFile,
		)
	default:
		app.logger.Info("seed account created", "username", app.cfg.SeedUsername)
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.Sessions = app.sessions
	router.Metrics = app.metrics
	router.Limits = app.cfg.RateLimits
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
