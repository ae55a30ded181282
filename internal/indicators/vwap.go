package indicators

// VwapPoint — VWAP закрытого окна и время последней сделки в нём.
type VwapPoint struct {
	Price       float64
	TimestampMs int64
}

// VwapAggregator — тумблинговое (непересекающееся) окно VWAP.
// Сделки не хранит: только инкрементальные суммы Σ(p·q) и Σ(q), O(1) на сделку.
// Закрытые окна складываются в ограниченную серию для последующей линейной подгонки.
type VwapAggregator struct {
	windowMs      int64
	windowStartMs int64
	sumPQ         float64
	sumQ          float64
	lastTsMs      int64

	series *BoundedSeries[VwapPoint]
}

type VwapConfig struct {
	WindowMs     int64 `yaml:"window_ms"`
	MaxSeriesLen int   `yaml:"max_series_len"`
}

func NewVwapAggregator(cfg VwapConfig) *VwapAggregator {
	return &VwapAggregator{
		windowMs: cfg.WindowMs,
		series:   NewBoundedSeries[VwapPoint](cfg.MaxSeriesLen),
	}
}

// AddTrade аккумулирует сделку. Если сделка открывает новое окно,
// закрывает предыдущее и возвращает его VWAP-точку (nil, если окно ещё идёт
// или в закрытом окне не было объёма).
func (v *VwapAggregator) AddTrade(price, qty float64, tsMs int64) *VwapPoint {
	if v.windowStartMs == 0 {
		v.openWindow(price, qty, tsMs)
		return nil
	}

	if tsMs-v.windowStartMs < v.windowMs {
		v.sumPQ += price * qty
		v.sumQ += qty
		v.lastTsMs = tsMs
		return nil
	}

	point := v.flush()
	v.openWindow(price, qty, tsMs)
	return point
}

func (v *VwapAggregator) openWindow(price, qty float64, tsMs int64) {
	v.windowStartMs = tsMs
	v.sumPQ = price * qty
	v.sumQ = qty
	v.lastTsMs = tsMs
}

func (v *VwapAggregator) flush() *VwapPoint {
	if v.sumQ <= 0 {
		return nil
	}
	point := VwapPoint{Price: v.sumPQ / v.sumQ, TimestampMs: v.lastTsMs}
	v.series.Push(point)
	return &point
}

// Series — накопленные VWAP-точки в хронологическом порядке.
func (v *VwapAggregator) Series() *BoundedSeries[VwapPoint] { return v.series }

// Cleanup выкидывает из серии точки старше cutoffMs.
func (v *VwapAggregator) Cleanup(cutoffMs int64) {
	v.series.TrimFront(func(p VwapPoint) bool { return p.TimestampMs < cutoffMs })
}
