package runner

import (
	"context"

	"go.uber.org/fx"

	"vol_monitor/internal/modules/config"
	"vol_monitor/internal/modules/runner/service"
	"vol_monitor/internal/notify"
	"vol_monitor/pkg/logger"
)

// NewNotifier собирает доставку алертов по заданным секретам:
// вебхук и/или телеграм, без обоих — stdout-заглушка.
func NewNotifier(cfg *config.Config) (notify.Notifier, error) {
	var fan notify.Fanout

	if cfg.Secrets.SlackWebhookURL != "" {
		fan = append(fan, notify.NewSlack(cfg.Secrets.SlackWebhookURL))
	}
	if cfg.Secrets.TelegramToken != "" && cfg.Secrets.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Secrets.TelegramToken, cfg.Secrets.TelegramChatID)
		if err != nil {
			return nil, err
		}
		fan = append(fan, tg)
	}
	if len(fan) == 0 {
		logger.Info("[NOTIFY] no delivery configured, using stdout")
		fan = append(fan, notify.NewStdout())
	}

	return fan, nil
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewNotifier,
			service.NewEngine,
		),
		fx.Invoke(func(lc fx.Lifecycle, e *service.Engine, ctx context.Context) {
			runCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go e.Run(runCtx)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
