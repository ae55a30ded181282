package indicators

import (
	"math"

	"vol_monitor/internal/models"
)

const (
	slopeHistoryLen = 10
	// оценка слабости наклона включается не раньше этого времени в позиции
	slopeCheckDelaySecs = 5.0
	// больше стольких слабых наклонов из десяти — импульс выдохся
	maxWeakSlopes = 5
)

// TrendStateMachine — жизненный цикл сигнала Scanning → Holding → Cooldown.
//
// Вход из Scanning требует валидной подгонки с наклоном за порогом
// и подтверждения накопленным OFI того же знака. Выход из Holding —
// либо откат цены за динамический порог против позиции (после защитного
// окна), либо вырождение наклона (большинство последних наклонов слабые).
type TrendStateMachine struct {
	state     models.StrategyState
	direction models.TrendDirection

	entrySlope     float64
	entryIntercept float64
	entryTsSec     float64

	cooldownStartTs float64
	cooldownSecs    float64

	slopeThreshold      float64
	ofiConfirmThreshold float64

	slopeThresholdRatio float64
	minPriceFallback    float64
	maxPriceFallback    float64
	entryProtectionSecs float64

	slopeHistory       *BoundedSeries[float64]
	slopeWeakThreshold float64
}

type TrendConfig struct {
	SlopeThreshold      float64 `yaml:"slope_threshold"`
	OFIConfirmThreshold float64 `yaml:"ofi_confirm_threshold"`
	CooldownSecs        float64 `yaml:"cooldown_secs"`
	SlopeThresholdRatio float64 `yaml:"slope_threshold_ratio"`
	MinPriceFallback    float64 `yaml:"min_price_fallback"`
	MaxPriceFallback    float64 `yaml:"max_price_fallback"`
	EntryProtectionSecs float64 `yaml:"entry_protection_secs"`
	SlopeWeakThreshold  float64 `yaml:"slope_weak_threshold"`
}

func NewTrendStateMachine(cfg TrendConfig) *TrendStateMachine {
	return &TrendStateMachine{
		state:               models.StateScanning,
		direction:           models.TrendNeutral,
		cooldownSecs:        cfg.CooldownSecs,
		slopeThreshold:      cfg.SlopeThreshold,
		ofiConfirmThreshold: cfg.OFIConfirmThreshold,
		slopeThresholdRatio: cfg.SlopeThresholdRatio,
		minPriceFallback:    cfg.MinPriceFallback,
		maxPriceFallback:    cfg.MaxPriceFallback,
		entryProtectionSecs: cfg.EntryProtectionSecs,
		slopeHistory:        NewBoundedSeries[float64](slopeHistoryLen),
		slopeWeakThreshold:  cfg.SlopeWeakThreshold,
	}
}

// Update продвигает машину по текущей подгонке, OFI и последней цене.
// fit может быть nil (нет подгонки на этом тике).
func (m *TrendStateMachine) Update(currentTsSec float64, fit *FitResult, cumOFI, latestPrice float64) {
	switch m.state {
	case models.StateCooldown:
		if currentTsSec-m.cooldownStartTs >= m.cooldownSecs {
			m.state = models.StateScanning
		}

	case models.StateScanning:
		if fit == nil || !fit.IsValid {
			return
		}
		if fit.Slope > m.slopeThreshold && cumOFI > m.ofiConfirmThreshold {
			m.enter(models.TrendLong, fit, currentTsSec)
		} else if fit.Slope < -m.slopeThreshold && cumOFI < -m.ofiConfirmThreshold {
			m.enter(models.TrendShort, fit, currentTsSec)
		}

	case models.StateHolding:
		if fit == nil {
			return
		}

		m.slopeHistory.Push(fit.Slope)

		elapsed := currentTsSec - m.entryTsSec

		if elapsed >= m.entryProtectionSecs {
			fittedPrice := m.entryIntercept + m.entrySlope*elapsed
			raw := (1.0 - m.slopeThresholdRatio) * math.Abs(m.entrySlope) * elapsed
			threshold := clamp(raw, m.minPriceFallback, m.maxPriceFallback)

			var shouldExit bool
			switch m.direction {
			case models.TrendLong:
				shouldExit = latestPrice < fittedPrice-threshold
			case models.TrendShort:
				shouldExit = latestPrice > fittedPrice+threshold
			}
			if shouldExit {
				m.exit(currentTsSec)
				return
			}
		}

		if elapsed >= slopeCheckDelaySecs && m.slopeHistory.Len() >= slopeHistoryLen {
			weak := 0
			for _, s := range m.slopeHistory.Items() {
				switch m.direction {
				case models.TrendLong:
					if s < m.slopeWeakThreshold {
						weak++
					}
				case models.TrendShort:
					if s > -m.slopeWeakThreshold {
						weak++
					}
				}
			}
			if weak > maxWeakSlopes {
				m.exit(currentTsSec)
			}
		}
	}
}

func (m *TrendStateMachine) enter(dir models.TrendDirection, fit *FitResult, tsSec float64) {
	m.state = models.StateHolding
	m.direction = dir
	m.entrySlope = fit.Slope
	m.entryIntercept = fit.CurrentPrice
	m.entryTsSec = tsSec
	m.slopeHistory.Clear()
}

func (m *TrendStateMachine) exit(tsSec float64) {
	m.state = models.StateCooldown
	m.cooldownStartTs = tsSec
	m.direction = models.TrendNeutral
	m.slopeHistory.Clear()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *TrendStateMachine) GetState() models.StrategyState      { return m.state }
func (m *TrendStateMachine) GetDirection() models.TrendDirection { return m.direction }
func (m *TrendStateMachine) IsHolding() bool                     { return m.state == models.StateHolding }
