package telemetry

import (
	"context"
	"net"

	"go.uber.org/fx"

	"vol_monitor/internal/modules/config"
	"vol_monitor/internal/modules/telemetry/service"
	"vol_monitor/pkg/logger"
)

const hubCapacity = 2000

func Module() fx.Option {
	return fx.Module("telemetry",
		fx.Provide(
			func() *service.Hub { return service.NewHub(hubCapacity) },
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, hub *service.Hub) {
			if !cfg.Telemetry.Enabled {
				logger.Info("[TELEMETRY] disabled by config")
				return
			}

			srv := service.NewServer(hub, cfg.Telemetry.Port)

			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					ln, err := net.Listen("tcp", srv.Addr)
					if err != nil {
						return err
					}
					logger.Info("[TELEMETRY] server running on ws://%s/stream", srv.Addr)
					go func() { _ = srv.Serve(ln) }()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					hub.Close()
					return srv.Shutdown(ctx)
				},
			})
		}),
	)
}
