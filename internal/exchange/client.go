package exchange

import (
	"github.com/gorilla/websocket"
)

// Client — подключение к комбинированному стриму Binance Futures
// (aggTrade + depth20@100ms по одному инструменту).
type Client struct {
	wsDialer *websocket.Dialer
	baseURL  string
	symbol   string
}

func NewClient(baseURL, symbol string) *Client {
	return &Client{
		wsDialer: &websocket.Dialer{},
		baseURL:  baseURL,
		symbol:   symbol,
	}
}

func (c *Client) streamURL() string {
	// /stream?streams=btcusdt@aggTrade/btcusdt@depth20@100ms
	return c.baseURL + "/stream?streams=" + c.symbol + "@aggTrade/" + c.symbol + "@depth20@100ms"
}
