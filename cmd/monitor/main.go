package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"vol_monitor/internal/modules/config"
	"vol_monitor/internal/modules/health"
	"vol_monitor/internal/modules/postgres"
	"vol_monitor/internal/modules/runner"
	"vol_monitor/internal/modules/telemetry"
	"vol_monitor/pkg/logger"
	"vol_monitor/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("vol_monitor")
	tracing.SetServiceName("vol_monitor")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		telemetry.Module(),
		health.Module(),
		runner.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
