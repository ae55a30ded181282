package service

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"vol_monitor/internal/models"
	"vol_monitor/internal/stats"
	"vol_monitor/pkg/logger"
)

// sendAlert отдаёт алерт нотифайеру и, если включён, в журнал.
func (e *Engine) sendAlert(ctx context.Context, a models.AlertPayload) {
	span := opentracing.GlobalTracer().StartSpan("alert_dispatch")
	span.SetTag("kind", string(a.Kind))
	span.SetTag("volatility", a.Volatility)
	defer span.Finish()

	sctx := opentracing.ContextWithSpan(ctx, span)
	e.n.SendAlert(sctx, a)

	if e.jrnl != nil {
		if err := e.jrnl.InsertAlert(sctx, a); err != nil {
			logger.Error("[JOURNAL] %v", err)
		}
	}
}

// flushReport рассылает распределение волатильности за интервал
// и начинает копить заново.
func (e *Engine) flushReport(ctx context.Context) {
	span := opentracing.GlobalTracer().StartSpan("histogram_report")
	span.SetTag("samples", e.hist.Count())
	defer span.Finish()

	sctx := opentracing.ContextWithSpan(ctx, span)

	report := e.hist.GenerateReport(e.cfg.Histogram.IntervalSecs / 60)
	e.n.SendReport(sctx, report)
	logger.Info("[REPORT] histogram sent (%d samples)", e.hist.Count())

	if e.jrnl != nil {
		if err := e.jrnl.InsertReport(sctx, report, e.hist.Count()); err != nil {
			logger.Error("[JOURNAL] %v", err)
		}
	}

	e.hist = stats.NewHistogramStats(e.cfg.Histogram.Step, e.cfg.Histogram.Buckets)
}
