// Package repository selects the DocumentStore backend from configuration.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"bucketlist/internal/config"
	"bucketlist/internal/domain/repositories"
	"bucketlist/internal/repository/memory"
	"bucketlist/internal/repository/postgres"
)

// Open returns the configured store and a function releasing its resources.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.DocumentStore, func(), error) {
	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewDocumentStore(), func() {}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}

		if cfg.RunMigrations {
			if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
				return nil, nil, err
			}
			logger.Info("migrations applied")
		}

		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			"max_conns", cfg.DBMaxConns,
			"min_conns", cfg.DBMinConns,
		)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Logger: logger,
		}
		txManager := postgres.NewTransactionManager(pool, logger)
		return postgres.NewDocumentStore(repoConfig, txManager), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE %q (want postgres or memory)", cfg.Store)
	}
}
