package indicators

import (
	"math"
	"time"
)

const secondsPerYear = 31536000.0 // 365 * 24 * 3600

// минимальная длительность окна при годовании, чтобы не делить на ноль
const minDtSecs = 0.01

// PricePoint — логарифм цены сделки и её таймстемп.
type PricePoint struct {
	LnPrice     float64
	TimestampMs int64
}

// VolatilityResult — результат расчёта мгновенной волатильности.
type VolatilityResult struct {
	Annualized float64 // годовая волатильность (1.0 = 100%)
	RawVol     float64 // RMS лог-доходностей без годования
	DtSecs     float64 // длительность окна данных, сек
	DurationMs int64   // то же в миллисекундах
	IsStale    bool    // данные устарели (лента молчит)
}

// VolatilityEngine — мгновенная волатильность по RMS лог-доходностей
// в скользящем окне из последних windowSize сделок.
//
// При молчании ленты дольше staleThresholdMs отдаёт защитный fallback:
// обманчиво низкий ноль опаснее завышенного значения.
type VolatilityEngine struct {
	windowSize        int
	prices            *BoundedSeries[PricePoint]
	staleThresholdMs  int64
	fallbackVol       float64
	expireThresholdMs int64

	nowMs func() int64 // подменяется в тестах
}

type VolatilityConfig struct {
	WindowSize         int     `yaml:"window_size"`
	StaleThresholdMs   int64   `yaml:"stale_threshold_ms"`
	FallbackVolatility float64 `yaml:"fallback_volatility"`
	ExpireThresholdMs  int64   `yaml:"expire_threshold_ms"`
}

func NewVolatilityEngine(cfg VolatilityConfig) *VolatilityEngine {
	return &VolatilityEngine{
		windowSize:        cfg.WindowSize,
		prices:            NewBoundedSeries[PricePoint](cfg.WindowSize),
		staleThresholdMs:  cfg.StaleThresholdMs,
		fallbackVol:       cfg.FallbackVolatility,
		expireThresholdMs: cfg.ExpireThresholdMs,
		nowMs:             func() int64 { return time.Now().UnixMilli() },
	}
}

// Update добавляет сделку в окно. Сначала выталкивает точки,
// чей возраст по wall-clock превысил expireThresholdMs (длинные паузы ленты),
// затем кладёт новую; переполнение окна выталкивает самую старую точку.
func (v *VolatilityEngine) Update(price float64, tradeTimeMs int64) {
	nowMs := v.nowMs()
	v.prices.TrimFront(func(p PricePoint) bool {
		return nowMs-p.TimestampMs > v.expireThresholdMs
	})
	v.prices.Push(PricePoint{LnPrice: math.Log(price), TimestampMs: tradeTimeMs})
}

// GetVolatility считает текущую волатильность.
// Меньше двух точек или просроченная лента ⇒ stale-результат с fallback-значением.
func (v *VolatilityEngine) GetVolatility() VolatilityResult {
	stale := VolatilityResult{
		Annualized: v.fallbackVol,
		IsStale:    true,
	}

	if v.prices.Len() < 2 {
		return stale
	}

	latest, _ := v.prices.Back()
	if v.nowMs()-latest.TimestampMs > v.staleThresholdMs {
		return stale
	}

	pts := v.prices.Items()
	var diffSqSum float64
	for i := 1; i < len(pts); i++ {
		d := pts[i].LnPrice - pts[i-1].LnPrice
		diffSqSum += d * d
	}
	count := len(pts) - 1
	rawVol := math.Sqrt(diffSqSum / float64(count))

	first := pts[0]
	durationMs := latest.TimestampMs - first.TimestampMs
	if durationMs < 0 {
		durationMs = 0
	}
	dtSecs := float64(durationMs) / 1000.0

	annualized := rawVol * math.Sqrt(secondsPerYear/math.Max(dtSecs, minDtSecs))

	return VolatilityResult{
		Annualized: annualized,
		RawVol:     rawVol,
		DtSecs:     dtSecs,
		DurationMs: durationMs,
	}
}

// IsReady — окно набрано полностью.
func (v *VolatilityEngine) IsReady() bool { return v.prices.Full() }

// CanCalculate — есть минимум две точки для доходности.
func (v *VolatilityEngine) CanCalculate() bool { return v.prices.Len() >= 2 }
