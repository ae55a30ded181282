package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"vol_monitor/internal/journal"
	"vol_monitor/internal/modules/config"
	"vol_monitor/pkg/db"
	"vol_monitor/pkg/logger"
)

// Module поднимает пул и журнал алертов. DSN не задан — журнал выключен,
// провайдер отдаёт nil и раннер работает без него.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config, lc fx.Lifecycle) (*journal.Journal, error) {
				if cfg.Secrets.DatabaseDSN == "" {
					logger.Info("[JOURNAL] disabled: no DATABASE_DSN")
					return nil, nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.Secrets.DatabaseDSN,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create pool: %w", err)
				}
				if err := pool.Ping(ctx); err != nil {
					return nil, err
				}

				manager := db.NewPgTxManager(pool)
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						manager.Close()
						return nil
					},
				})

				j := journal.New(manager)
				if err := j.EnsureSchema(ctx); err != nil {
					return nil, err
				}
				return j, nil
			},
		),
	)
}
