package config

import "go.uber.org/fx"

// Module регистрирует конфиг и горячую перезагрузку порогов как fx-провайдеры.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
			NewAlertView,
		),
		fx.Invoke(func(cfg *Config, view *AlertView) error {
			return view.Watch(cfg)
		}),
	)
}
