package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"vol_monitor/pkg/logger"
)

// AlertView — перечитываемый на лету срез алертовых порогов.
// Ядро читает его перед каждой проверкой порога; менять порог можно
// правкой конфиг-файла без рестарта процесса.
type AlertView struct {
	mu           sync.RWMutex
	threshold    float64
	cooldownSecs int64
}

func NewAlertView(cfg *Config) *AlertView {
	return &AlertView{
		threshold:    cfg.Alerts.Threshold,
		cooldownSecs: cfg.Alerts.CooldownSecs,
	}
}

// Threshold — текущий порог годовой волатильности в процентах.
func (v *AlertView) Threshold() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.threshold
}

// CooldownSecs — текущая пауза между алертами.
func (v *AlertView) CooldownSecs() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cooldownSecs
}

func (v *AlertView) set(threshold float64, cooldownSecs int64) {
	v.mu.Lock()
	v.threshold = threshold
	v.cooldownSecs = cooldownSecs
	v.mu.Unlock()
}

// Watch следит за конфиг-файлом и обновляет вью при изменении секции alerts.
func (v *AlertView) Watch(cfg *Config) error {
	vp := viper.New()
	vp.SetConfigFile(cfg.Path)
	if err := vp.ReadInConfig(); err != nil {
		return err
	}

	vp.OnConfigChange(func(_ fsnotify.Event) {
		if err := vp.ReadInConfig(); err != nil {
			logger.Error("[CONFIG] reload failed: %v", err)
			return
		}
		threshold := vp.GetFloat64("alerts.threshold")
		cooldown := vp.GetInt64("alerts.cooldown_secs")
		if threshold <= 0 || cooldown < 0 {
			logger.Error("[CONFIG] reload ignored: bad alerts values")
			return
		}
		old := v.Threshold()
		v.set(threshold, cooldown)
		if old != threshold {
			logger.Info("[CONFIG] threshold reloaded: %.2f%% -> %.2f%%", old, threshold)
		}
	})
	vp.WatchConfig()
	return nil
}
