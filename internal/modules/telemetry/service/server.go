package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vol_monitor/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// телеметрия слушается локальными консюмерами
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewServer — HTTP-сервер, раздающий поток хаба по WebSocket.
func NewServer(hub *Hub, port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("[TELEMETRY] upgrade failed: %v", err)
			return
		}
		go handleConn(conn, hub)
	})

	return &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// handleConn крутит форвардинг одного подписчика до ошибки записи
// или закрытия хаба. Отставание не стопорит ни хаб, ни других подписчиков.
func handleConn(conn *websocket.Conn, hub *Hub) {
	sub := hub.Subscribe()
	defer sub.Unsubscribe()
	defer func() { _ = conn.Close() }()

	// входящие кадры не нужны, но читать надо — иначе не увидим close
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		msg, gap, ok := sub.Next()
		if !ok {
			return
		}
		if gap > 0 {
			logger.Info("[TELEMETRY] subscriber lagged, dropped %d messages", gap)
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return
		}
	}
}
