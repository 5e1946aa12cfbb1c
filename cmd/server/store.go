package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"folio/internal/config"
	portfolioRepo "folio/internal/domain/repositories/portfolio"
	"folio/internal/handler"
	"folio/internal/repository/memory"
	mongorepo "folio/internal/repository/mongo"
	"folio/internal/repository/postgres"
	redisrepo "folio/internal/repository/redis"
)

// store bundles the portfolio repository with its health checks and cleanup
type store struct {
	repo   portfolioRepo.PortfolioRepository
	checks map[string]handler.HealthCheck
	close  func()
}

// openStore connects the repository selected by STORE_DRIVER
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected",
			"max_conns", pool.Config().MaxConns,
			"min_conns", pool.Config().MinConns,
		)

		repo := postgres.NewPortfolioRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Logger: logger,
		})
		return &store{
			repo:   repo,
			checks: map[string]handler.HealthCheck{"postgres": pool.Ping},
			close:  pool.Close,
		}, nil

	case "mongo":
		client, err := mongorepo.Connect(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}

		repo := mongorepo.NewPortfolioRepository(client.Database(cfg.MongoDatabase), logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Info("mongo connected", "database", cfg.MongoDatabase)

		return &store{
			repo: repo,
			checks: map[string]handler.HealthCheck{
				"mongo": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Error("mongo disconnect failed", "error", err)
				}
			},
		}, nil

	case "memory":
		logger.Warn("using in-memory store: data is lost on restart")
		return &store{
			repo:   memory.NewPortfolioRepository(),
			checks: map[string]handler.HealthCheck{},
			close:  func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want postgres, mongo or memory)", cfg.StoreDriver)
	}
}

// openVisitTracker connects Redis when REDIS_URL is set. A nil tracker
// disables unique view counting.
func openVisitTracker(cfg *config.Config, logger *slog.Logger) (*redisrepo.VisitTracker, func(), error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set: unique views will not be counted")
		return nil, func() {}, nil
	}

	tracker, err := redisrepo.NewVisitTracker(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("visit tracker connected")

	return tracker, func() {
		if err := tracker.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
		}
	}, nil
}
