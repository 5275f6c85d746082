package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/bsl-quest/internal/config"
	"github.com/aliskhannn/bsl-quest/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/bsl-quest/internal/infra/postgres/repository"
	"github.com/aliskhannn/bsl-quest/internal/infra/sqlite"
	"github.com/aliskhannn/bsl-quest/internal/service"
	"github.com/aliskhannn/bsl-quest/internal/storage"
)

// stores bundles the persistence ports of the selected driver.
type stores struct {
	mastery   service.MasteryStore
	scores    service.ScoreStore
	xp        service.XPStore
	users     service.UserRepository
	progress  service.ProgressRepository
	reminders service.ReminderRepository
}

// openStores connects the configured driver. The returned func releases it.
func openStores(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*stores, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}

		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		tr := postgres.NewTransactor(pool)
		applied, err := postgres.Migrate(ctx, tr)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		lg.Info("postgres ready", zap.Int("migrations_applied", applied))

		return &stores{
			mastery:   pgrepo.NewMasteryRepository(pool, tr),
			scores:    pgrepo.NewScoreRepository(pool),
			xp:        pgrepo.NewXPRepository(pool),
			users:     pgrepo.NewUserRepository(pool),
			progress:  pgrepo.NewProgressRepository(pool),
			reminders: pgrepo.NewReminderRepository(pool),
		}, pool.Close, nil

	case config.DriverSQLite:
		s, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		lg.Info("sqlite ready", zap.String("path", cfg.SQLite.Path))

		closeFn := func() {
			if err := s.Close(); err != nil {
				lg.Error("failed to close sqlite", zap.Error(err))
			}
		}
		return &stores{s, s, s, s, s, s}, closeFn, nil

	case config.DriverMemory:
		lg.Warn("using in-memory storage, progress is lost on restart")
		s := storage.NewMemoryStore()
		return &stores{s, s, s, s, s, s}, func() {}, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageDriver, cfg.Storage.Driver)
}
