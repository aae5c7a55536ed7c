package runtime

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tjfontaine/vaccine-proof-api/internal/adapters/config/file"
	"github.com/tjfontaine/vaccine-proof-api/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/memory"
	"github.com/tjfontaine/vaccine-proof-api/internal/storage/sqldb"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithFileConfig uses file-based configuration with hot-reload (default).
// The path should point to a config.yaml file that will be watched for changes.
func WithFileConfig(path string) Option {
	return func(a *App) error {
		provider, err := file.NewProvider(path, file.WithLogger(a.logger))
		if err != nil {
			return fmt.Errorf("create file config provider: %w", err)
		}
		a.config = provider
		return nil
	}
}

// WithConfigProvider sets a custom config provider.
// For advanced use cases where you need full control over config loading.
func WithConfigProvider(provider ports.ConfigProvider) Option {
	return func(a *App) error {
		a.config = provider
		return nil
	}
}

// WithSQLite uses SQLite storage regardless of storage.type.
func WithSQLite(path string) Option {
	return func(a *App) error {
		store, err := sqlite.NewProvider(path)
		if err != nil {
			return fmt.Errorf("create sqlite storage: %w", err)
		}
		a.store = store
		return nil
	}
}

// WithPostgres uses PostgreSQL storage regardless of storage.type.
func WithPostgres(dsn string) Option {
	return func(a *App) error {
		store, err := sqldb.NewPostgres(dsn)
		if err != nil {
			return fmt.Errorf("create postgres storage: %w", err)
		}
		a.store = store
		return nil
	}
}

// WithMemoryStorage keeps proofs in memory. Data is lost on exit.
func WithMemoryStorage() Option {
	return func(a *App) error {
		a.store = memory.New()
		return nil
	}
}

// WithProofStore sets a custom proof store.
func WithProofStore(store ports.ProofStore) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}

// WithRevocationChecker overrides the checker built from revocation.source.
func WithRevocationChecker(checker ports.RevocationChecker) Option {
	return func(a *App) error {
		a.checker = checker
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithErrorLogger sets the logger used by the error hooks. It defaults to a
// JSON logger on stderr.
func WithErrorLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.errorLogger = logger
		return nil
	}
}

// WithLevelVar lets log.level (and its hot reloads) drive level.
func WithLevelVar(level *slog.LevelVar) Option {
	return func(a *App) error {
		a.level = level
		return nil
	}
}

func defaultErrorLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
