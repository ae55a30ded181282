package models

// TelemetryPacket — снимок расчёта для подписчиков телеметрии.
// Поля, не относящиеся к типу сообщения, остаются nil и опускаются при сериализации.
type TelemetryPacket struct {
	MsgType     string `json:"msg_type"` // "TRADE" | "BOOK"
	TimestampMs int64  `json:"timestamp_ms"`

	// только для TRADE
	Price        *float64 `json:"price,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	IsBuyerMaker *bool    `json:"is_buyer_maker,omitempty"`

	// общие метрики; смысл зависит от msg_type
	Vol        *float64 `json:"vol,omitempty"`
	Imbalance  *float64 `json:"imbalance,omitempty"`
	Bias       *float64 `json:"bias,omitempty"`
	TrendState *int8    `json:"trend_state,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// NewTradePacket собирает TRADE-пакет из сделки и текущих метрик.
func NewTradePacket(t TradeEvent, vol, imbalance, bias float64, dir TrendDirection) TelemetryPacket {
	return TelemetryPacket{
		MsgType:      "TRADE",
		TimestampMs:  t.TradeTimeMs,
		Price:        ptr(t.Price),
		Quantity:     ptr(t.Qty),
		IsBuyerMaker: ptr(t.IsBuyerMaker),
		Vol:          ptr(vol),
		Imbalance:    ptr(imbalance),
		Bias:         ptr(bias),
		TrendState:   ptr(dir.Wire()),
	}
}

// NewBookPacket собирает BOOK-пакет по результату обновления стакана.
func NewBookPacket(tsMs int64, imbalance, bias float64, dir TrendDirection) TelemetryPacket {
	return TelemetryPacket{
		MsgType:     "BOOK",
		TimestampMs: tsMs,
		Imbalance:   ptr(imbalance),
		Bias:        ptr(bias),
		TrendState:  ptr(dir.Wire()),
	}
}
