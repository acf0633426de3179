package main

import (
	"context"
	"fmt"
	"log/slog"

	"realdream/internal/adapter/memory"
	"realdream/internal/adapter/postgres"
	"realdream/internal/adapter/usecase"
	"realdream/internal/config"
	"realdream/internal/core/port"
	"realdream/internal/db"
	"realdream/internal/metrics"
)

// openRepository returns the ledger storage selected by STORAGE_DRIVER and a
// function releasing it.
func openRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.LedgerRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, state is lost on exit")
		return memory.NewLedgerRepository(), func() {}, nil
	case config.StoragePostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewLedgerRepository(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newUseCase(cfg config.Config, repo port.LedgerRepository, logger *slog.Logger, m *metrics.Metrics) *usecase.RewardUseCase {
	return usecase.NewRewardUseCase(repo, usecase.Options{
		Name:     cfg.Ledger.Name,
		Symbol:   cfg.Ledger.Symbol,
		Operator: cfg.Ledger.Operator,
		Logger:   logger,
		Metrics:  m,
	})
}
