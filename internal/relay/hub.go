// Package relay is the host side of the system: it serves the actor
// directory and flag storage over HTTP and runs the shared broadcast
// channel all sessions subscribe to.
package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Broadcasts queued per session before it is considered stalled.
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
)

// session pairs a connection with its outbound queue. The write pump
// is the connection's only writer; gorilla connections support one
// concurrent writer at most.
type session struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans every received payload out to all connected sessions.
// There is one channel, no rooms and no acknowledgements; receivers
// filter on recipient themselves.
type Hub struct {
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[*websocket.Conn]*session
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[*websocket.Conn]*session),
	}
}

// Add registers a session connection and starts its write pump.
func (h *Hub) Add(conn *websocket.Conn) {
	sess := &session{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.sessions[conn] = sess
	count := len(h.sessions)
	h.mu.Unlock()
	go h.writePump(sess)
	h.logger.Info("session connected", zap.Int("sessions", count))
}

// Remove drops a session connection, stops its write pump and closes
// the connection. Safe to call more than once per connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	sess, ok := h.sessions[conn]
	if ok {
		delete(h.sessions, conn)
	}
	count := len(h.sessions)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(sess.send)
	_ = conn.Close()
	h.logger.Info("session disconnected", zap.Int("sessions", count))
}

// Broadcast queues payload for every connected session, the origin
// included. A session whose queue is full is stalled and gets
// dropped; delivery order per session follows queue order.
func (h *Hub) Broadcast(payload []byte) {
	var stalled []*session
	h.mu.Lock()
	for _, sess := range h.sessions {
		select {
		case sess.send <- payload:
		default:
			stalled = append(stalled, sess)
		}
	}
	h.mu.Unlock()

	for _, sess := range stalled {
		h.logger.Warn("dropping stalled session")
		h.Remove(sess.conn)
	}
}

// writePump drains one session's queue onto its connection. Runs
// until the queue is closed or a write fails.
func (h *Hub) writePump(sess *session) {
	for payload := range sess.send {
		_ = sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sess.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("dropping unwritable session", zap.Error(err))
			h.Remove(sess.conn)
			return
		}
	}
}

// Count returns the number of connected sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
