package exchange

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"vol_monitor/internal/models"
	"vol_monitor/pkg/logger"
)

// Stream — поток разобранных событий. Переподключается сам с бэкоффом;
// состояние индикаторов живёт у вызывающего и реконнект его не трогает.
// onState дёргается при смене состояния соединения (health-эндпоинт).
func (c *Client) Stream(ctx context.Context, onState func(connected bool)) <-chan models.Event {
	out := make(chan models.Event)
	go func() {
		defer close(out)
		url := c.streamURL()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			logger.Info("[WS] connect %s", url)
			conn, _, err := c.wsDialer.DialContext(ctx, url, nil)
			if err != nil {
				logger.Error("[WS] dial error: %v", errors.Wrap(err, "binance dial"))
				time.Sleep(5 * time.Second)
				continue
			}
			if onState != nil {
				onState(true)
			}

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					logger.Error("[WS] read error: %v", err)
					_ = conn.Close()
					break
				}

				ev, ok := parseFrame(msg)
				if !ok {
					continue
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}

			if onState != nil {
				onState(false)
			}
			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(5 * time.Second)
			}
		}
	}()
	return out
}

// parseFrame разбирает кадр в событие. Нечисловые price/quantity —
// фатальная ошибка разбора для этого события: логируем и пропускаем.
func parseFrame(msg []byte) (models.Event, bool) {
	// тип события лежит в data.e; раскладываем по сырым структурам
	var probe struct {
		Data struct {
			EventType string `json:"e"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(msg, &probe); err != nil {
		return models.Event{}, false
	}

	switch probe.Data.EventType {
	case "aggTrade":
		var frame struct {
			Data struct {
				AggID        uint64 `json:"a"`
				TradeTime    int64  `json:"T"`
				Price        string `json:"p"`
				Quantity     string `json:"q"`
				IsBuyerMaker bool   `json:"m"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			return models.Event{}, false
		}
		price, err := strconv.ParseFloat(frame.Data.Price, 64)
		if err != nil {
			logger.Error("[WS] bad trade price %q: %v", frame.Data.Price, err)
			return models.Event{}, false
		}
		qty, err := strconv.ParseFloat(frame.Data.Quantity, 64)
		if err != nil {
			logger.Error("[WS] bad trade quantity %q: %v", frame.Data.Quantity, err)
			return models.Event{}, false
		}
		return models.Event{Trade: &models.TradeEvent{
			AggID:        frame.Data.AggID,
			TradeTimeMs:  frame.Data.TradeTime,
			Price:        price,
			Qty:          qty,
			IsBuyerMaker: frame.Data.IsBuyerMaker,
		}}, true

	case "depthUpdate":
		var frame struct {
			Data struct {
				TransTime int64       `json:"T"`
				UpdateID  uint64      `json:"u"`
				Bids      [][2]string `json:"b"`
				Asks      [][2]string `json:"a"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			return models.Event{}, false
		}
		bids, ok := parseLevels(frame.Data.Bids)
		if !ok {
			return models.Event{}, false
		}
		asks, ok := parseLevels(frame.Data.Asks)
		if !ok {
			return models.Event{}, false
		}
		return models.Event{Depth: &models.DepthEvent{
			TransTimeMs: frame.Data.TransTime,
			UpdateID:    frame.Data.UpdateID,
			Bids:        bids,
			Asks:        asks,
		}}, true
	}

	return models.Event{}, false
}

func parseLevels(raw [][2]string) ([]models.PriceLevel, bool) {
	levels := make([]models.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			logger.Error("[WS] bad level price %q: %v", pair[0], err)
			return nil, false
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			logger.Error("[WS] bad level qty %q: %v", pair[1], err)
			return nil, false
		}
		levels = append(levels, models.PriceLevel{Price: price, Qty: qty})
	}
	return levels, true
}
