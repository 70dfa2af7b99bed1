// Package stream pushes JPEG-encoded frames to remote viewers over
// websockets. Delivery follows the capture pipeline's rule: drop frames,
// never queue. A viewer that cannot keep up loses frames, the capture path
// never blocks on it.
package stream

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"thermalview/internal/encoder"
	"thermalview/internal/frame"
)

// sendBuffer is the per-client frame backlog. Small on purpose: anything
// deeper just adds latency for a slow viewer.
const sendBuffer = 4

const pingInterval = 25 * time.Second

// ClientStats counts delivery outcomes for one connected viewer.
type ClientStats struct {
	Sent    uint64
	Dropped uint64
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	sent    uint64
	dropped uint64
}

// Server accepts websocket viewers and fans frames out to them.
type Server struct {
	enc encoder.Encoder
	log zerolog.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

// NewServer creates a stream server encoding outgoing frames with enc.
func NewServer(enc encoder.Encoder, log zerolog.Logger) *Server {
	return &Server{
		enc: enc,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// Viewers are LAN dashboards; origin enforcement is left to the
			// deployment's reverse proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Router returns the HTTP routes for remote viewing. Additional handlers
// (metrics and the like) can be mounted on the returned router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ws", s.handleWS)
	return r
}

// Publish encodes the frame once and fans it out to every connected viewer
// without blocking. Frames published with no viewers connected are not
// encoded at all.
func (s *Server) Publish(f *frame.Frame) {
	s.mu.RLock()
	if s.closed || len(s.clients) == 0 {
		s.mu.RUnlock()
		return
	}
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	data, err := s.enc.Encode(f)
	if err != nil {
		s.log.Warn().Err(err).Msg("frame encode for stream failed")
		return
	}
	for _, c := range targets {
		select {
		case c.send <- data:
			atomic.AddUint64(&c.sent, 1)
		default:
			atomic.AddUint64(&c.dropped, 1)
		}
	}
}

// ClientCount returns the number of connected viewers.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Stats reports per-viewer delivery counters keyed by client id.
func (s *Server) Stats() map[string]ClientStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ClientStats, len(s.clients))
	for id, c := range s.clients {
		out[id] = ClientStats{
			Sent:    atomic.LoadUint64(&c.sent),
			Dropped: atomic.LoadUint64(&c.dropped),
		}
	}
	return out
}

// Close disconnects every viewer and rejects new connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, c := range s.clients {
		close(c.done)
		c.conn.Close()
	}
	s.clients = make(map[string]*client)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[c.id] = c
	s.mu.Unlock()

	s.log.Info().Str("client", c.id).Str("remote", r.RemoteAddr).Msg("viewer connected")
	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.done)
	}
	s.mu.Unlock()
	c.conn.Close()
	s.log.Info().Str("client", c.id).
		Uint64("sent", atomic.LoadUint64(&c.sent)).
		Uint64("dropped", atomic.LoadUint64(&c.dropped)).
		Msg("viewer disconnected")
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.drop(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

// readLoop drains control frames and detects the peer going away.
func (s *Server) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case <-c.done:
			default:
				s.drop(c)
			}
			return
		}
	}
}
