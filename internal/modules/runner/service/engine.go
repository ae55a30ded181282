package service

import (
	"context"
	"time"

	"vol_monitor/internal/exchange"
	"vol_monitor/internal/indicators"
	"vol_monitor/internal/journal"
	"vol_monitor/internal/models"
	"vol_monitor/internal/modules/config"
	healthsvc "vol_monitor/internal/modules/health/service"
	telemetrysvc "vol_monitor/internal/modules/telemetry/service"
	"vol_monitor/internal/notify"
	"vol_monitor/internal/stats"
	"vol_monitor/pkg/logger"
)

// Engine — ядро монитора: единственная горутина, прогоняющая каждое
// входное событие через все индикаторы строго по порядку. Внутри ядра
// нет ни локов, ни конкурентного доступа; единственный разделяемый
// ресурс — журнал телеметрии, и он не блокирует продюсера.
//
// Состояние индикаторов живёт в Engine и переживает реконнекты ленты:
// транспортный разрыв не повод терять окна, это делает только
// явная stale/expire-логика.
type Engine struct {
	cfg    *config.Config
	alerts *config.AlertView
	n      notify.Notifier
	hub    *telemetrysvc.Hub
	jrnl   *journal.Journal // nil — журнал выключен
	health *healthsvc.State

	vol    *indicators.VolatilityEngine
	vwap   *indicators.VwapAggregator
	flow   *indicators.OrderFlowEngine
	fitter *indicators.TrendFitter
	sm     *indicators.TrendStateMachine
	klines *indicators.KlineSynthesizer
	hist   *stats.HistogramStats

	lastVwapPrice float64
	lastAlertAt   time.Time
}

func NewEngine(
	cfg *config.Config,
	alerts *config.AlertView,
	n notify.Notifier,
	hub *telemetrysvc.Hub,
	jrnl *journal.Journal,
	health *healthsvc.State,
) *Engine {
	return &Engine{
		cfg:    cfg,
		alerts: alerts,
		n:      n,
		hub:    hub,
		jrnl:   jrnl,
		health: health,
		vol:    indicators.NewVolatilityEngine(cfg.Volatility),
		vwap:   indicators.NewVwapAggregator(cfg.Vwap),
		flow:   indicators.NewOrderFlowEngine(cfg.OrderFlow),
		fitter: indicators.NewTrendFitter(cfg.Fit),
		sm:     indicators.NewTrendStateMachine(cfg.Trend),
		klines: indicators.NewKlineSynthesizer(10),
		hist:   stats.NewHistogramStats(cfg.Histogram.Step, cfg.Histogram.Buckets),
	}
}

// Run крутит основной цикл до отмены контекста.
func (e *Engine) Run(ctx context.Context) {
	client := exchange.NewClient(e.cfg.Feed.URL, e.cfg.Feed.Symbol)
	stream := client.Stream(ctx, func(connected bool) {
		e.health.SetWSConnected(connected)
		if !connected {
			e.health.SetReady(false)
		}
	})

	reportTicker := time.NewTicker(time.Duration(e.cfg.Histogram.IntervalSecs) * time.Second)
	defer reportTicker.Stop()

	logger.Info("[ENGINE] started (threshold %.1f%%, report every %ds)",
		e.alerts.Threshold(), e.cfg.Histogram.IntervalSecs)

	for {
		select {
		case <-ctx.Done():
			return

		case <-reportTicker.C:
			e.flushReport(ctx)

		case ev, ok := <-stream:
			if !ok {
				return
			}
			switch {
			case ev.Trade != nil:
				e.onTrade(ctx, *ev.Trade)
			case ev.Depth != nil:
				e.onDepth(*ev.Depth)
			}
		}
	}
}

func (e *Engine) onTrade(ctx context.Context, t models.TradeEvent) {
	e.health.TouchTrade(time.UnixMilli(t.TradeTimeMs))
	e.health.SetReady(true)

	e.vol.Update(t.Price, t.TradeTimeMs)
	e.flow.AddTrade(t.TradeTimeMs, t.Price, t.Qty, t.IsBuyerMaker)
	e.klines.Update(t.Price, t.Qty, t.TradeTimeMs/1000)

	if point := e.vwap.AddTrade(t.Price, t.Qty, t.TradeTimeMs); point != nil {
		e.lastVwapPrice = point.Price
		e.onVwapFlush(ctx, *point)
	}

	volRes := e.vol.GetVolatility()
	if e.vol.CanCalculate() && !volRes.IsStale {
		e.hist.Record(volRes.Annualized)
	}

	e.hub.Send(models.NewTradePacket(
		t, volRes.Annualized, e.flow.GetCumOFI(), e.vwapBias(t.Price), e.sm.GetDirection(),
	))

	e.maybeVolAlert(ctx, t, volRes)
}

// onVwapFlush: закрытие VWAP-окна двигает тренд —
// подгонка по серии и шаг машины состояний.
func (e *Engine) onVwapFlush(ctx context.Context, point indicators.VwapPoint) {
	// серию чистим с запасом в четыре окна подгонки
	cutoff := point.TimestampMs - int64(e.cfg.Fit.WindowSecs*4.0*1000.0)
	e.vwap.Cleanup(cutoff)

	fit := e.fitter.Fit(e.vwap.Series(), point.TimestampMs)

	wasHolding := e.sm.IsHolding()
	e.sm.Update(float64(point.TimestampMs)/1000.0, fit, e.flow.GetCumOFI(), point.Price)

	if !wasHolding && e.sm.IsHolding() {
		e.sendAlert(ctx, models.AlertPayload{
			Kind:        models.AlertTrend,
			TimestampMs: point.TimestampMs,
			Direction:   e.sm.GetDirection(),
			CumOFI:      e.flow.GetCumOFI(),
			VwapBias:    e.vwapBias(point.Price),
		})
	}
}

func (e *Engine) onDepth(d models.DepthEvent) {
	res := e.flow.UpdateDepth(d.UpdateID, d.TransTimeMs, d.Bids, d.Asks)
	if res == nil {
		return // дубль, прогрев или пустой/скрещенный стакан
	}

	e.flow.CalculateImpactPrice(d.Bids, d.Asks, e.cfg.OrderFlow.ImpactTargetQty)

	bias := 0.0
	if impact := e.flow.GetImpactPrice(); impact > 0 {
		bias = (res.MidPrice - impact) / impact
	}
	e.hub.Send(models.NewBookPacket(d.TransTimeMs, res.CumOFI, bias, e.sm.GetDirection()))
}

func (e *Engine) vwapBias(price float64) float64 {
	if e.lastVwapPrice <= 0 {
		return 0
	}
	return (price - e.lastVwapPrice) / e.lastVwapPrice
}

// maybeVolAlert шлёт алерт при пробое порога, не чаще кулдауна.
// Порог читается из горячего вью на каждой проверке.
func (e *Engine) maybeVolAlert(ctx context.Context, t models.TradeEvent, volRes indicators.VolatilityResult) {
	if !e.vol.IsReady() || volRes.IsStale {
		return
	}
	threshold := e.alerts.Threshold()
	if volRes.Annualized < threshold/100.0 {
		return
	}

	now := time.Now()
	if !e.lastAlertAt.IsZero() &&
		now.Sub(e.lastAlertAt) < time.Duration(e.alerts.CooldownSecs())*time.Second {
		return
	}
	e.lastAlertAt = now

	payload := models.AlertPayload{
		Kind:        models.AlertVolatility,
		TimestampMs: t.TradeTimeMs,
		Volatility:  volRes.Annualized,
		Threshold:   threshold,
		RawVol:      volRes.RawVol,
		WindowSecs:  volRes.DtSecs,
	}

	tradeSec := t.TradeTimeMs / 1000
	if k := e.klines.FindMaxImpactCandle(e.cfg.Alerts.LookbackSecs, tradeSec); k != nil {
		payload.Candle = &models.CandleEvidence{
			OpenTimeSec: k.OpenTimeSec,
			Open:        k.Open,
			Close:       k.Close,
			Change:      k.Change(),
			Volume:      k.Volume,
		}
	}

	logger.Info("[ALERT] vol %.2f%% >= %.1f%%", volRes.Annualized*100.0, threshold)
	e.sendAlert(ctx, payload)
}
