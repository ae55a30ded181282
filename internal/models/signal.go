package models

// TrendDirection — направление тренда.
type TrendDirection int

const (
	TrendNeutral TrendDirection = iota
	TrendLong
	TrendShort
)

func (d TrendDirection) String() string {
	switch d {
	case TrendLong:
		return "LONG"
	case TrendShort:
		return "SHORT"
	default:
		return "NEUTRAL"
	}
}

// Wire — численное представление для телеметрии: Long=1, Short=-1, Neutral=0.
// Только сериализация, в логике сравниваем сами варианты.
func (d TrendDirection) Wire() int8 {
	switch d {
	case TrendLong:
		return 1
	case TrendShort:
		return -1
	default:
		return 0
	}
}

// StrategyState — фаза жизненного цикла сигнала.
type StrategyState int

const (
	StateScanning StrategyState = iota
	StateHolding
	StateCooldown
)

func (s StrategyState) String() string {
	switch s {
	case StateHolding:
		return "HOLDING"
	case StateCooldown:
		return "COOLDOWN"
	default:
		return "SCANNING"
	}
}
