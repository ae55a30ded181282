package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"vol_monitor/internal/models"
	"vol_monitor/pkg/logger"
)

type Notifier interface {
	SendAlert(ctx context.Context, a models.AlertPayload)
	SendReport(ctx context.Context, report string)
}

// FormatAlert — человекочитаемый текст алерта.
func FormatAlert(a models.AlertPayload) string {
	ts := time.UnixMilli(a.TimestampMs).Format("15:04:05.000")

	switch a.Kind {
	case models.AlertTrend:
		return fmt.Sprintf(
			"📈 *Trend %s*\n> *Time*: `%s`\n> *Cum OFI*: `%.3f`\n> *VWAP bias*: `%.4f%%`",
			a.Direction, ts, a.CumOFI, a.VwapBias*100.0,
		)
	default:
		msg := fmt.Sprintf(
			"🚨 *High Volatility Alert* 🚨\n> *Time*: `%s`\n> *Annualized Vol*: *%.2f%%* (threshold %.1f%%)\n> *Raw RMS*: `%.6f` over `%.2fs`",
			ts, a.Volatility*100.0, a.Threshold, a.RawVol, a.WindowSecs,
		)
		if a.Candle != nil {
			candleTime := time.Unix(a.Candle.OpenTimeSec, 0).Format("15:04:05")
			msg += fmt.Sprintf(
				"\n> *Max 1s Candle*: `%s` %.2f -> %.2f (Δ%.2f, vol %.4f)",
				candleTime, a.Candle.Open, a.Candle.Close, a.Candle.Change, a.Candle.Volume,
			)
		}
		return msg
	}
}

// Slack — вебхук-нотифайер. Отправка fire-and-forget:
// алерт не должен тормозить обработку ленты.
type Slack struct {
	webhookURL string
	http       *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Slack) post(ctx context.Context, text string) {
	go func() {
		payload, err := sonic.Marshal(map[string]string{"text": text})
		if err != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
		if err != nil {
			logger.Error("[NOTIFY] slack request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.http.Do(req)
		if err != nil {
			logger.Error("[NOTIFY] slack send: %v", errors.Wrap(err, "webhook post"))
			return
		}
		_ = resp.Body.Close()
	}()
}

func (s *Slack) SendAlert(ctx context.Context, a models.AlertPayload) {
	s.post(ctx, FormatAlert(a))
}

func (s *Slack) SendReport(ctx context.Context, report string) {
	s.post(ctx, report)
}

// Telegram — альтернативная доставка алертов в чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot init")
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	m := tgbot.NewMessage(t.chatID, msg)
	m.ParseMode = tgbot.ModeMarkdown
	if _, err := t.bot.Send(m); err != nil {
		logger.Error("[NOTIFY] telegram send: %v", err)
	}
}

func (t *Telegram) SendAlert(_ context.Context, a models.AlertPayload) { t.send(FormatAlert(a)) }
func (t *Telegram) SendReport(_ context.Context, report string)       { t.send(report) }

// Stdout — заглушка, всё в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) SendAlert(_ context.Context, a models.AlertPayload) {
	logger.Info("ALERT %s", FormatAlert(a))
}

func (s *Stdout) SendReport(_ context.Context, report string) {
	logger.Info("REPORT %s", report)
}

// Fanout рассылает в несколько нотифайеров сразу.
type Fanout []Notifier

func (f Fanout) SendAlert(ctx context.Context, a models.AlertPayload) {
	for _, n := range f {
		n.SendAlert(ctx, a)
	}
}

func (f Fanout) SendReport(ctx context.Context, report string) {
	for _, n := range f {
		n.SendReport(ctx, report)
	}
}
