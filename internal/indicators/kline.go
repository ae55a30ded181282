package indicators

import "math"

// Kline — секундная OHLCV-свеча.
type Kline struct {
	OpenTimeSec int64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
}

func newKline(timeSec int64, price, volume float64) Kline {
	return Kline{
		OpenTimeSec: timeSec,
		Open:        price,
		High:        price,
		Low:         price,
		Close:       price,
		Volume:      volume,
	}
}

func (k *Kline) update(price, volume float64) {
	k.Close = price
	if price > k.High {
		k.High = price
	}
	if price < k.Low {
		k.Low = price
	}
	k.Volume += volume
}

// Change — тело свечи (close − open).
func (k Kline) Change() float64 { return k.Close - k.Open }

// KlineSynthesizer — синтез секундных свечей из потока сделок.
// Одна "текущая" свеча мутируется на месте, пока секунда совпадает;
// смена секунды архивирует её в ограниченную историю.
// Используется как свидетельство к алертам, не как хранилище данных.
type KlineSynthesizer struct {
	current    *Kline
	history    *BoundedSeries[Kline]
	historyCap int
}

func NewKlineSynthesizer(historyCap int) *KlineSynthesizer {
	return &KlineSynthesizer{
		history:    NewBoundedSeries[Kline](historyCap),
		historyCap: historyCap,
	}
}

// Update добавляет сделку. Если сделка закрыла предыдущую секунду,
// возвращает завершённую свечу.
func (s *KlineSynthesizer) Update(price, volume float64, tradeTimeSec int64) *Kline {
	switch {
	case s.current == nil:
		k := newKline(tradeTimeSec, price, volume)
		s.current = &k
		return nil

	case s.current.OpenTimeSec == tradeTimeSec:
		s.current.update(price, volume)
		return nil

	default:
		finished := *s.current
		s.history.Push(finished)
		k := newKline(tradeTimeSec, price, volume)
		s.current = &k
		return &finished
	}
}

// Current — текущая незавершённая свеча (nil до первой сделки).
func (s *KlineSynthesizer) Current() *Kline { return s.current }

// FindMaxImpactCandle — свеча с максимальным |close−open| среди истории
// и текущей свечи, открытая не раньше nowSec−lookbackSecs.
func (s *KlineSynthesizer) FindMaxImpactCandle(lookbackSecs, nowSec int64) *Kline {
	var best *Kline
	consider := func(k Kline) {
		if k.OpenTimeSec < nowSec-lookbackSecs {
			return
		}
		if best == nil || math.Abs(k.Change()) > math.Abs(best.Change()) {
			c := k
			best = &c
		}
	}
	for _, k := range s.history.Items() {
		consider(k)
	}
	if s.current != nil {
		consider(*s.current)
	}
	return best
}
