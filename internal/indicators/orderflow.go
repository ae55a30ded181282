package indicators

import (
	"math"
	"sort"

	"vol_monitor/internal/models"
)

// вес уровня затухает с расстоянием от mid price
const levelDecay = 0.2

// изменения меньше этого шума не учитываем
const flowEpsilon = 1e-6

const tradeBufferCap = 10000

// ключ уровня: цена × 100, целым числом — float как ключ карты нестабилен
func priceKey(p float64) int64 { return int64(p * 100.0) }

func keyPrice(k int64) float64 { return float64(k) / 100.0 }

type bufferedTrade struct {
	tsMs         int64
	price        float64
	qty          float64
	isBuyerMaker bool
}

type ofiSample struct {
	tsSec  float64
	rawOFI float64
}

// OFIResult — результат одного тика стакана.
type OFIResult struct {
	RawOFI   float64
	CumOFI   float64
	MidPrice float64
}

// OrderFlowEngine — Order Flow Imbalance по диффу стакана + съеденной ликвидности.
//
// На каждый принятый depth-апдейт:
//  1. сделки из интервала (lastDepthTs, transTime] раскладываются по уровням
//     и сторонам (по флагу maker/taker);
//  2. по объединению уровней прошлого стакана, текущего стакана и сделок
//     считается net-поток лимитных заявок с экспоненциальным затуханием
//     по удалению от mid price;
//  3. raw OFI = bidFlow − askFlow попадает в скользящий буфер, по которому
//     считается накопленный OFI с затуханием по свежести.
type OrderFlowEngine struct {
	prevBids     map[int64]float64
	prevAsks     map[int64]float64
	lastUpdateID uint64
	warmedUp     bool

	ofiBuffer     *BoundedSeries[ofiSample]
	cumWindowSecs float64
	decay         float64

	tradeBuffer   *BoundedSeries[bufferedTrade]
	lastDepthTsMs int64

	impactPrice float64
	impactQty   float64
}

type OrderFlowConfig struct {
	CumWindowSecs   float64 `yaml:"cum_window_secs"`
	Decay           float64 `yaml:"decay"`
	ImpactTargetQty float64 `yaml:"impact_target_qty"`
}

func NewOrderFlowEngine(cfg OrderFlowConfig) *OrderFlowEngine {
	return &OrderFlowEngine{
		prevBids:      make(map[int64]float64),
		prevAsks:      make(map[int64]float64),
		ofiBuffer:     NewBoundedSeries[ofiSample](4096),
		cumWindowSecs: cfg.CumWindowSecs,
		decay:         cfg.Decay,
		tradeBuffer:   NewBoundedSeries[bufferedTrade](tradeBufferCap),
	}
}

// AddTrade кладёт сделку в буфер для последующей атрибуции к depth-тикам.
// Старше tradeBufferCap сделок буфер не держит.
func (e *OrderFlowEngine) AddTrade(tsMs int64, price, qty float64, isBuyerMaker bool) {
	e.tradeBuffer.Push(bufferedTrade{tsMs: tsMs, price: price, qty: qty, isBuyerMaker: isBuyerMaker})
}

// UpdateDepth обрабатывает снапшот стакана.
// Возвращает nil для дублей/пересортицы update_id, для пустого или
// скрещенного стакана и для самого первого снапшота (прогрев).
func (e *OrderFlowEngine) UpdateDepth(updateID uint64, transTimeMs int64, bids, asks []models.PriceLevel) *OFIResult {
	if updateID <= e.lastUpdateID {
		return nil
	}
	e.lastUpdateID = updateID

	currBids := make(map[int64]float64, len(bids))
	for _, l := range bids {
		currBids[priceKey(l.Price)] = l.Qty
	}
	currAsks := make(map[int64]float64, len(asks))
	for _, l := range asks {
		currAsks[priceKey(l.Price)] = l.Qty
	}

	bestBid := 0.0
	for _, l := range bids {
		if l.Price > bestBid {
			bestBid = l.Price
		}
	}
	bestAsk := math.MaxFloat64
	for _, l := range asks {
		if l.Price < bestAsk {
			bestAsk = l.Price
		}
	}
	if bestBid <= 0 || bestAsk >= math.MaxFloat64 || bestAsk < bestBid {
		// пустой либо скрещенный стакан: состояние сохраняем, OFI не считаем
		e.storeState(currBids, currAsks, transTimeMs)
		return nil
	}
	midPrice := (bestBid + bestAsk) / 2.0

	if !e.warmedUp {
		e.storeState(currBids, currAsks, transTimeMs)
		e.warmedUp = true
		return nil
	}

	sliceBids, sliceAsks := e.drainTrades(transTimeMs)

	// съеденные бидами сделки — против asks и наоборот:
	// is_buyer_maker=true ⇒ тейкер продал в бид
	bidFlow := netLimitFlow(e.prevBids, currBids, sliceAsks, midPrice)
	askFlow := netLimitFlow(e.prevAsks, currAsks, sliceBids, midPrice)
	rawOFI := bidFlow - askFlow

	tsSec := float64(transTimeMs) / 1000.0
	e.ofiBuffer.Push(ofiSample{tsSec: tsSec, rawOFI: rawOFI})
	cutoff := tsSec - e.cumWindowSecs
	e.ofiBuffer.TrimFront(func(s ofiSample) bool { return s.tsSec < cutoff })

	cumOFI := e.weightedCumOFI(tsSec)

	e.storeState(currBids, currAsks, transTimeMs)

	return &OFIResult{RawOFI: rawOFI, CumOFI: cumOFI, MidPrice: midPrice}
}

func (e *OrderFlowEngine) storeState(bids, asks map[int64]float64, transTimeMs int64) {
	e.prevBids = bids
	e.prevAsks = asks
	e.lastDepthTsMs = transTimeMs
}

// drainTrades раскладывает сделки интервала (lastDepthTs, transTime] по уровням.
// Граница полуоткрытая снизу и закрытая сверху; более поздние сделки
// остаются в буфере до следующего тика.
func (e *OrderFlowEngine) drainTrades(transTimeMs int64) (sliceBids, sliceAsks map[int64]float64) {
	sliceBids = make(map[int64]float64)
	sliceAsks = make(map[int64]float64)

	kept := make([]bufferedTrade, 0, e.tradeBuffer.Len())
	for _, t := range e.tradeBuffer.Items() {
		if t.tsMs <= e.lastDepthTsMs {
			continue // уже атрибутировано прошлым тиком
		}
		if t.tsMs <= transTimeMs {
			k := priceKey(t.price)
			if t.isBuyerMaker {
				sliceBids[k] += t.qty
			} else {
				sliceAsks[k] += t.qty
			}
		} else {
			kept = append(kept, t)
		}
	}

	e.tradeBuffer.Clear()
	for _, t := range kept {
		e.tradeBuffer.Push(t)
	}
	return sliceBids, sliceAsks
}

// netLimitFlow — суммарное изменение лимитной ликвидности одной стороны.
// По объединению уровней: net = (curr − prev) + traded, вес затухает
// экспоненциально с удалением уровня от mid price.
func netLimitFlow(prevBook, currBook, trades map[int64]float64, midPrice float64) float64 {
	levels := make(map[int64]struct{}, len(prevBook)+len(currBook)+len(trades))
	for k := range prevBook {
		levels[k] = struct{}{}
	}
	for k := range currBook {
		levels[k] = struct{}{}
	}
	for k := range trades {
		levels[k] = struct{}{}
	}

	var flow float64
	for k := range levels {
		netChange := (currBook[k] - prevBook[k]) + trades[k]
		if math.Abs(netChange) > flowEpsilon {
			w := math.Exp(-levelDecay * math.Abs(keyPrice(k)-midPrice))
			flow += netChange * w
		}
	}
	return flow
}

func (e *OrderFlowEngine) weightedCumOFI(nowSec float64) float64 {
	var cum float64
	for _, s := range e.ofiBuffer.Items() {
		age := nowSec - s.tsSec
		cum += s.rawOFI * math.Pow(e.decay, age*10.0)
	}
	return cum
}

// GetCumOFI — накопленный OFI с затуханием относительно последнего тика.
func (e *OrderFlowEngine) GetCumOFI() float64 {
	last, ok := e.ofiBuffer.Back()
	if !ok {
		return 0
	}
	return e.weightedCumOFI(last.tsSec)
}

// CalculateImpactPrice — средняя цена съедания targetQty с каждой стороны стакана.
// targetQty прижимается к меньшей из доступных ликвидностей сторон;
// сохраняет (buyImpact+sellImpact)/2 как ликвидность-скорректированную цену.
func (e *OrderFlowEngine) CalculateImpactPrice(bids, asks []models.PriceLevel, targetQty float64) {
	var bidTotal, askTotal float64
	for _, l := range bids {
		bidTotal += l.Qty
	}
	for _, l := range asks {
		askTotal += l.Qty
	}

	actualQty := math.Min(targetQty, math.Min(bidTotal, askTotal))
	if actualQty <= 0 {
		return
	}

	sortedAsks := append([]models.PriceLevel(nil), asks...)
	sort.Slice(sortedAsks, func(i, j int) bool { return sortedAsks[i].Price < sortedAsks[j].Price })
	buyImpact := sweep(sortedAsks, actualQty)

	sortedBids := append([]models.PriceLevel(nil), bids...)
	sort.Slice(sortedBids, func(i, j int) bool { return sortedBids[i].Price > sortedBids[j].Price })
	sellImpact := sweep(sortedBids, actualQty)

	e.impactPrice = (buyImpact + sellImpact) / 2.0
	e.impactQty = actualQty
}

// sweep — средневзвешенная цена съедания qty по уровням в заданном порядке.
func sweep(levels []models.PriceLevel, qty float64) float64 {
	var cost float64
	remaining := qty
	for _, l := range levels {
		take := math.Min(l.Qty, remaining)
		cost += l.Price * take
		remaining -= take
		if remaining <= 0 {
			break
		}
	}
	return cost / qty
}

// GetImpactPrice — последняя рассчитанная impact-цена (0 до первого расчёта).
func (e *OrderFlowEngine) GetImpactPrice() float64 { return e.impactPrice }

// GetImpactQty — фактическое количество, использованное в последнем расчёте.
func (e *OrderFlowEngine) GetImpactQty() float64 { return e.impactQty }
