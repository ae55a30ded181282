package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"vol_monitor/internal/indicators"
)

const configFilePathENV = "CONFIG_FILE"

type FeedConfig struct {
	URL    string `yaml:"url"`
	Symbol string `yaml:"symbol"`
}

type AlertConfig struct {
	Threshold    float64 `yaml:"threshold"` // годовая волатильность в процентах
	CooldownSecs int64   `yaml:"cooldown_secs"`
	LookbackSecs int64   `yaml:"lookback_secs"` // окно поиска свечи-свидетельства
}

type HistogramConfig struct {
	IntervalSecs int64   `yaml:"interval_secs"`
	Step         float64 `yaml:"step"`
	Buckets      int     `yaml:"buckets"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type HealthConfig struct {
	Addr string `yaml:"addr"`
}

// Secrets — чувствительные значения, только из окружения (.env), не из YAML.
type Secrets struct {
	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	TelegramToken   string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID  int64  `envconfig:"TELEGRAM_CHAT_ID"`
	DatabaseDSN     string `envconfig:"DATABASE_DSN"` // пусто — журнал алертов выключен
}

// Config ...
type Config struct {
	Feed       FeedConfig                  `yaml:"feed"`
	Volatility indicators.VolatilityConfig `yaml:"volatility"`
	Vwap       indicators.VwapConfig       `yaml:"vwap"`
	OrderFlow  indicators.OrderFlowConfig  `yaml:"orderflow"`
	Fit        indicators.FitConfig        `yaml:"fit"`
	Trend      indicators.TrendConfig      `yaml:"trend"`
	Alerts     AlertConfig                 `yaml:"alerts"`
	Histogram  HistogramConfig             `yaml:"histogram"`
	Telemetry  TelemetryConfig             `yaml:"telemetry"`
	Tracing    TracingConfig               `yaml:"tracing"`
	Health     HealthConfig                `yaml:"health"`

	Secrets Secrets `yaml:"-"`

	// откуда загрузились — нужно вотчеру горячей перезагрузки
	Path string `yaml:"-"`
}

func configPath() string {
	name := os.Getenv(configFilePathENV)
	if name == "" {
		name = "values_local.yaml"
	}
	return "configs/" + name
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	path := configPath()
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config file %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	config := Config{
		Feed: FeedConfig{
			URL:    "wss://fstream.binance.com",
			Symbol: "btcusdt",
		},
		Volatility: indicators.VolatilityConfig{
			WindowSize:         100,
			StaleThresholdMs:   5000,
			FallbackVolatility: 0.5,
			ExpireThresholdMs:  10000,
		},
		Vwap: indicators.VwapConfig{
			WindowMs:     100,
			MaxSeriesLen: 1000,
		},
		OrderFlow: indicators.OrderFlowConfig{
			CumWindowSecs:   30,
			Decay:           0.95,
			ImpactTargetQty: 10,
		},
		Fit: indicators.FitConfig{
			WindowSecs: 5,
			MinPoints:  10,
			MinR2:      0.3,
		},
		Trend: indicators.TrendConfig{
			CooldownSecs:        30,
			SlopeThresholdRatio: 0.5,
			EntryProtectionSecs: 3,
		},
		Alerts: AlertConfig{
			Threshold:    1.0,
			CooldownSecs: 60,
			LookbackSecs: 5,
		},
		Histogram: HistogramConfig{
			IntervalSecs: 3600,
			Step:         0.01,
			Buckets:      100,
		},
		Telemetry: TelemetryConfig{Enabled: true, Port: 8765},
		Health:    HealthConfig{Addr: ":8080"},
		Path:      path,
	}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config file")
	}

	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, errors.Wrap(err, "failed to read secrets from env")
	}

	return &config, nil
}
