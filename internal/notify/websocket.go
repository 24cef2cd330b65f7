// internal/notify/websocket.go
package notify

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WebsocketHandler upgrades requests and streams hub broadcasts to the peer
type WebsocketHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewWebsocketHandler creates the live feed endpoint. An empty origin list
// or a "*" entry accepts any origin.
func NewWebsocketHandler(hub *Hub, allowedOrigins []string, logger *logrus.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP implements http.Handler
func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		http.Error(w, "live feed unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.Unsubscribe(sub)
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// readPump only watches for close and pong frames; observers never send data
func (h *WebsocketHandler) readPump(conn *websocket.Conn, sub *Subscriber) {
	defer h.hub.Unsubscribe(sub)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Debug("websocket read error")
			}
			return
		}
	}
}

func (h *WebsocketHandler) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.hub.Unsubscribe(sub)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.hub.Unsubscribe(sub)
				return
			}
		}
	}
}
