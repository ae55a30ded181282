package models

// CandleEvidence — репрезентативная секундная свеча, приложенная к алерту.
type CandleEvidence struct {
	OpenTimeSec int64   `json:"open_time_sec"`
	Open        float64 `json:"open"`
	Close       float64 `json:"close"`
	Change      float64 `json:"change"`
	Volume      float64 `json:"volume"`
}

// AlertKind — тип алерта.
type AlertKind string

const (
	AlertVolatility AlertKind = "VOLATILITY"
	AlertTrend      AlertKind = "TREND"
)

// AlertPayload — то, что уходит нотифайеру и в журнал.
type AlertPayload struct {
	Kind        AlertKind `json:"kind"`
	TimestampMs int64     `json:"timestamp_ms"`

	// волатильность
	Volatility float64         `json:"volatility,omitempty"` // годовая, доли (1.0 = 100%)
	Threshold  float64         `json:"threshold,omitempty"`  // порог в процентах
	RawVol     float64         `json:"raw_vol,omitempty"`
	WindowSecs float64         `json:"window_secs,omitempty"`
	Candle     *CandleEvidence `json:"candle,omitempty"`

	// тренд
	Direction TrendDirection `json:"direction,omitempty"`
	CumOFI    float64        `json:"cum_ofi,omitempty"`
	VwapBias  float64        `json:"vwap_bias,omitempty"`
}
