// Package runtime provides the App struct and lifecycle management for the
// vaccine-proof API.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/tjfontaine/vaccine-proof-api/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/hooks"
	"github.com/tjfontaine/vaccine-proof-api/internal/pkg/config"
	"github.com/tjfontaine/vaccine-proof-api/internal/revocation"
	"github.com/tjfontaine/vaccine-proof-api/internal/server"
	"github.com/tjfontaine/vaccine-proof-api/internal/services"
	"github.com/tjfontaine/vaccine-proof-api/internal/services/vaccineproof"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/memory"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/sqldb"
)

// App is the main entry point for running the vaccine-proof API.
// It manages configuration, storage, the service registry and the HTTP
// server lifecycle.
type App struct {
	// Dependencies (injected via options)
	config  ports.ConfigProvider
	store   ports.ProofStore
	checker ports.RevocationChecker

	logger      *slog.Logger
	errorLogger *slog.Logger
	level       *slog.LevelVar

	// Internal state
	registry *services.Registry
	server   *server.Server
	serveErr chan error

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// New creates a new App with the given options.
func New(opts ...Option) (*App, error) {
	app := &App{
		logger:   slog.Default(),
		registry: services.NewRegistry(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if app.config == nil {
		return nil, fmt.Errorf("config provider required (use WithFileConfig or WithConfigProvider)")
	}
	if app.errorLogger == nil {
		app.errorLogger = defaultErrorLogger()
	}

	return app, nil
}

// Start loads the configuration, wires the vaccine-proof service and starts
// serving HTTP in the background.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ctx, a.cancel = context.WithCancel(ctx)

	cfg, err := a.config.Load(a.ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.applyLogLevel(cfg)

	if a.store == nil {
		if a.store, err = openStore(cfg.Storage); err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
	}

	if a.checker == nil {
		if a.checker, err = a.newChecker(cfg.Revocation); err != nil {
			return fmt.Errorf("create revocation checker: %w", err)
		}
	}

	svc := services.New(vaccineproof.Path,
		vaccineproof.NewResource(a.store),
		vaccineproof.Hooks(a.checker, hooks.ErrorLogger(a.errorLogger)),
		hooks.WithLogger(a.logger),
	)
	if err := a.registry.Register(svc); err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	timeout, _ := cfg.Server.RequestTimeoutDuration()
	a.server = server.New(cfg.Server.Port, timeout, a.logger)
	a.server.MountRegistry(a.registry)

	a.serveErr = make(chan error, 1)
	go func(srv *server.Server) {
		if err := srv.Start(); err != nil {
			a.logger.Error("server error", slog.String("error", err.Error()))
			a.serveErr <- err
		}
		close(a.serveErr)
	}(a.server)

	// Watch for config changes
	go a.watchConfig()

	a.logger.Info("vaccine-proof api started",
		slog.Int("port", cfg.Server.Port),
		slog.String("storage", cfg.Storage.Type),
		slog.String("revocation", cfg.Revocation.Source))

	return nil
}

// Handler returns the HTTP handler. It is nil before Start.
func (a *App) Handler() http.Handler {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return nil
	}
	return a.server.Router
}

// Registry returns the service registry.
func (a *App) Registry() *services.Registry {
	return a.registry
}

// Errors reports a server that stopped on its own. It is closed when the
// server exits.
func (a *App) Errors() <-chan error {
	return a.serveErr
}

// Shutdown gracefully stops the app. Every resource is closed even when an
// earlier one fails; the failures are returned together.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logger.Info("shutting down vaccine-proof api")

	if a.cancel != nil {
		a.cancel()
	}

	var result *multierror.Error

	// Stop HTTP server
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutdown server: %w", err))
		}
	}

	// Close resources
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close storage: %w", err))
		}
	}

	if a.config != nil {
		if err := a.config.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close config: %w", err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		a.logger.Error("shutdown finished with errors", slog.String("error", err.Error()))
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}

// watchConfig applies hot-reloadable settings. Storage, revocation and port
// changes need a restart.
func (a *App) watchConfig() {
	onChange := func(newCfg *config.Config) {
		a.logger.Info("config changed, reloading")
		a.applyLogLevel(newCfg)
	}

	if err := a.config.Watch(a.ctx, onChange); err != nil {
		if err != context.Canceled {
			a.logger.Error("config watch failed", slog.String("error", err.Error()))
		}
	}
}

func (a *App) applyLogLevel(cfg *config.Config) {
	if a.level == nil {
		return
	}
	a.level.Set(cfg.Log.SlogLevel())
	a.logger.Debug("log level set", slog.String("level", cfg.Log.SlogLevel().String()))
}

func (a *App) newChecker(cfg config.RevocationConfig) (ports.RevocationChecker, error) {
	var checker ports.RevocationChecker

	switch cfg.Source {
	case "", "store":
		checker = revocation.NewStoreChecker(a.store)
	case "webhook":
		timeout, err := cfg.Webhook.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		checker = revocation.NewWebhookChecker(revocation.WebhookConfig{
			URL:          cfg.Webhook.URL,
			Timeout:      timeout,
			OnError:      revocation.OnError(cfg.Webhook.OnError),
			Retries:      cfg.Webhook.Retries,
			AllowPrivate: cfg.Webhook.AllowPrivate,
			Headers:      cfg.Webhook.Headers,
			Logger:       a.logger,
		})
	default:
		return nil, fmt.Errorf("unknown revocation source %q", cfg.Source)
	}

	if cfg.Cache.Size > 0 {
		ttl, err := cfg.Cache.TTLDuration()
		if err != nil {
			return nil, err
		}
		checker = revocation.NewCachedChecker(checker, cfg.Cache.Size, ttl)
	}

	return checker, nil
}

// openStore never returns a typed nil store alongside an error.
func openStore(cfg config.StorageConfig) (ports.ProofStore, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(), nil
	case "postgres":
		store, err := sqldb.NewPostgres(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "", "sqlite":
		store, err := sqlite.NewProvider(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
