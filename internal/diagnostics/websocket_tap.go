package diagnostics

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/protolab/gigemc/internal/logging"
)

const (
	tapWriteWait  = 10 * time.Second
	tapPongWait   = 60 * time.Second
	tapPingPeriod = (tapPongWait * 9) / 10
)

var tapUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketTap is a Consumer that streams every event it receives to
// all currently-connected WebSocket clients as JSON. It is a single
// optional sink among possibly many on a Bus.
type WebSocketTap struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan Event
}

// NewWebSocketTap creates an empty tap. Subscribe it to a Bus and call
// ServeHTTP from an http.Server handler to expose it.
func NewWebSocketTap() *WebSocketTap {
	return &WebSocketTap{clients: make(map[*websocket.Conn]chan Event)}
}

// Notify implements Consumer by queuing ev for delivery to every
// connected client. A client whose queue is full is dropped rather than
// allowed to stall the rest of the tap.
func (t *WebSocketTap) Notify(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for conn, ch := range t.clients {
		select {
		case ch <- ev:
		default:
			logging.Warn("diagnostics tap: client queue full, dropping client")
			delete(t.clients, conn)
			close(ch)
			_ = conn.Close()
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams events to
// it until the connection closes.
func (t *WebSocketTap) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := tapUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("diagnostics tap: upgrade failed", zap.Error(err))
		return
	}

	ch := make(chan Event, 256)
	t.mu.Lock()
	t.clients[conn] = ch
	t.mu.Unlock()

	go t.readPump(conn, ch)
	t.writePump(conn, ch)
}

// readPump discards client frames but tears the tap down on read error,
// matching the server-push-only nature of this tap.
func (t *WebSocketTap) readPump(conn *websocket.Conn, ch chan Event) {
	defer t.remove(conn, ch)
	_ = conn.SetReadDeadline(time.Now().Add(tapPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(tapPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (t *WebSocketTap) writePump(conn *websocket.Conn, ch chan Event) {
	ticker := time.NewTicker(tapPingPeriod)
	defer ticker.Stop()
	defer t.remove(conn, ch)
	defer func() { _ = conn.Close() }()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(tapWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(tapWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (t *WebSocketTap) remove(conn *websocket.Conn, ch chan Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.clients[conn]; ok && cur == ch {
		delete(t.clients, conn)
	}
}
