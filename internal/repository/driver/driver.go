// Package driver opens the configured database and wires its repositories.
package driver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
	"github.com/sinuca-magalhaes/caixa/internal/repository/postgres"
	"github.com/sinuca-magalhaes/caixa/internal/repository/sqlite"
)

// Database is an open connection that can report health and migrate itself.
type Database interface {
	repository.DatabaseHealth
	repository.Migrator
}

// Result contains the created repositories and database connection.
type Result struct {
	Repos    *repository.Repositories
	Database Database
}

// Open connects to the database selected by cfg.Driver.
// The caller owns Result.Database and must close it.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Result, error) {
	logger = logger.With().Str("component", "database").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Path)
		if cfg.JournalMode != "" {
			sqliteCfg.JournalMode = cfg.JournalMode
		}
		if cfg.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.BusyTimeout
		}
		if cfg.CacheSize != 0 {
			sqliteCfg.CacheSize = cfg.CacheSize
		}
		if cfg.SynchronousMode != "" {
			sqliteCfg.SynchronousMode = cfg.SynchronousMode
		}

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, err
		}
		return &Result{
			Repos: &repository.Repositories{
				User:        sqlite.NewUserRepository(db),
				Transaction: sqlite.NewTransactionRepository(db),
			},
			Database: db,
		}, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Result{
			Repos: &repository.Repositories{
				User:        postgres.NewUserRepository(db),
				Transaction: postgres.NewTransactionRepository(db),
			},
			Database: db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
