package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/binwatch/binwatch/internal/alerts"
	"github.com/binwatch/binwatch/internal/ingest"
	"github.com/binwatch/binwatch/internal/model"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sessionBuf is the per-session outgoing message buffer depth. A session
	// that falls this far behind is disconnected.
	sessionBuf = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients on every broadcast tick.
type Message struct {
	Event string   `json:"event"`
	Data  Snapshot `json:"data"`
}

// Snapshot is the live state pushed to dashboard clients.
type Snapshot struct {
	Bins        []model.Bin    `json:"bins"`
	Alerts      []alerts.Alert `json:"alerts"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

// Hub broadcasts the current bin and alert state to every connected
// WebSocket client on a fixed interval.
type Hub struct {
	coord    *ingest.Coordinator
	interval time.Duration

	mu       sync.RWMutex
	sessions map[*session]struct{}
}

// session is one connected WebSocket client with its outgoing buffer.
type session struct {
	conn *websocket.Conn
	out  chan []byte
}

// New creates a Hub that reads from coord and broadcasts every interval.
func New(coord *ingest.Coordinator, interval time.Duration) *Hub {
	return &Hub{
		coord:    coord,
		interval: interval,
		sessions: make(map[*session]struct{}),
	}
}

// Run drives the broadcast ticker. It blocks until ctx is cancelled, then
// drops every active session.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.dropAll()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the connection and serves the client until it
// disconnects. The current snapshot is sent immediately on connect so the
// dashboard has data before the first tick.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	s := &session{conn: conn, out: make(chan []byte, sessionBuf)}
	h.add(s)
	defer h.drop(s)

	if data, err := h.buildMessage(); err == nil {
		select {
		case s.out <- data:
		default:
		}
	}

	go s.writeLoop()
	s.readLoop() // blocks until the connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) add(s *session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) drop(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		close(s.out)
	}
	h.mu.Unlock()
}

func (h *Hub) dropAll() {
	h.mu.Lock()
	for s := range h.sessions {
		close(s.out)
		delete(h.sessions, s)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast() {
	data, err := h.buildMessage()
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.out <- data:
		default:
			// Buffer full: the client stopped reading.
			h.drop(s)
		}
	}
}

func (h *Hub) buildMessage() ([]byte, error) {
	view := h.coord.Snapshot()
	return json.Marshal(Message{
		Event: "snapshot",
		Data: Snapshot{
			Bins:        view.Bins,
			Alerts:      view.ActiveAlerts,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// writeLoop forwards buffered messages to the connection and keeps it alive
// with periodic pings. One goroutine per session.
func (s *session) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hub dropped the session.
				s.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes control frames (pong, close) and detects disconnects.
// Blocks until the connection closes.
func (s *session) readLoop() {
	defer s.conn.Close()
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
