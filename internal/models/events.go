package models

// PriceLevel — одна ступень стакана: цена + количество.
type PriceLevel struct {
	Price float64
	Qty   float64
}

// TradeEvent — агрегированная сделка (aggTrade) после разбора wire-JSON.
// IsBuyerMaker=true означает, что тейкером был продавец (движение вниз).
type TradeEvent struct {
	AggID        uint64
	TradeTimeMs  int64
	Price        float64
	Qty          float64
	IsBuyerMaker bool
}

// DepthEvent — снапшот стакана depth20@100ms после разбора wire-JSON.
type DepthEvent struct {
	TransTimeMs int64
	UpdateID    uint64
	Bids        []PriceLevel
	Asks        []PriceLevel
}

// Event — один элемент входного потока: либо сделка, либо стакан.
// Ровно одно из полей не nil.
type Event struct {
	Trade *TradeEvent
	Depth *DepthEvent
}
