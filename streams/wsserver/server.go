// Package wsserver exposes the pool event feed to websocket subscribers.
// Each connection receives every event published after it attached, wrapped
// in a typed envelope, as one JSON text frame per event.
package wsserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Iwinswap/iwinswap-amm-engine-go/events"
	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// StreamEvent is the wrapper object sent to subscribers.
type StreamEvent struct {
	Type    string     `json:"type"`
	Payload cpmm.Event `json:"payload"`
	SentAt  int64      `json:"sentAt"`
}

// Server upgrades HTTP requests to websocket connections and relays the
// broadcaster's event feed to each of them. It is an http.Handler; mount it
// on whatever mux the host process runs.
type Server struct {
	logger      *slog.Logger
	broadcaster *events.Broadcaster
}

// NewServer creates a stream server fed by the given broadcaster.
func NewServer(logger *slog.Logger, broadcaster *events.Broadcaster) *Server {
	return &Server{
		logger:      logger,
		broadcaster: broadcaster,
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade websocket connection", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub, cancel := s.broadcaster.Subscribe()
	s.logger.Info("stream subscriber connected", "remote", conn.RemoteAddr().String())

	go s.writePump(conn, sub, cancel)
	go s.readPump(conn, cancel)
}

// writePump relays events from the subscription to the peer and keeps the
// connection alive with pings. It owns all writes on the connection.
func (s *Server) writePump(conn *websocket.Conn, sub <-chan cpmm.Event, cancel func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()

	for {
		select {
		case e, ok := <-sub:
			if !ok {
				// Subscription canceled by the read side.
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			frame := StreamEvent{
				Type:    e.EventType(),
				Payload: e,
				SentAt:  time.Now().UnixMilli(),
			}
			if err := conn.WriteJSON(frame); err != nil {
				s.logger.Warn("dropping stream subscriber", "remote", conn.RemoteAddr().String(), "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames so pongs and close messages are
// processed; subscribers are not expected to send data.
func (s *Server) readPump(conn *websocket.Conn, cancel func()) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
