package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/perfdash/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// StreamHandler pushes every published snapshot over a websocket
type StreamHandler struct {
	dash     Dashboard
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a stream handler
func NewStreamHandler(dash Dashboard, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		dash: dash,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Stream sends the current snapshot, then each new one until the client goes away
// GET /api/performance/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.dash.Subscribe()
	defer cancel()

	log := h.logger.WithField("remote", r.RemoteAddr)
	log.Debug("Stream client connected")

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	if err := h.write(conn, h.dash.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Debug("Stream client disconnected")
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, snap); err != nil {
				log.WithError(err).Debug("Stream write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// readLoop discards client messages and reports when the connection ends
func (h *StreamHandler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
