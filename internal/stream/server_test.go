package stream

import (
	"bytes"
	"image/jpeg"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"thermalview/internal/encoder"
	"thermalview/internal/frame"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(encoder.NewJPEGEncoder(70), zerolog.Nop())
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/ws"
}

func grayFrame() *frame.Frame {
	return &frame.Frame{Width: 16, Height: 12, Format: frame.Gray8, Data: make([]byte, 192)}
}

// TestViewerReceivesFrames connects a websocket client and checks published
// frames arrive as decodable JPEG.
func TestViewerReceivesFrames(t *testing.T) {
	s, ts := testServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForClients(t, s, 1)
	s.Publish(grayFrame())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", kind)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("payload is not JPEG: %v", err)
	}
}

// TestPublishNeverBlocks verifies the capture path survives a viewer that
// never drains its backlog: publishes beyond the send buffer must complete
// immediately and count drops. The client is registered without a write loop
// so the backlog genuinely fills.
func TestPublishNeverBlocks(t *testing.T) {
	s, _ := testServer(t)

	c := &client{id: "stuck", send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sendBuffer*10; i++ {
			s.Publish(grayFrame())
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a stuck viewer")
	}

	st := s.Stats()["stuck"]
	if st.Sent != sendBuffer {
		t.Errorf("sent = %d, want %d (buffer capacity)", st.Sent, sendBuffer)
	}
	if st.Dropped != sendBuffer*9 {
		t.Errorf("dropped = %d, want %d", st.Dropped, sendBuffer*9)
	}

	// Remove the fabricated client so Close does not touch its nil conn.
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
}

// TestPublishWithoutViewers is a cheap no-op.
func TestPublishWithoutViewers(t *testing.T) {
	s, _ := testServer(t)
	s.Publish(grayFrame())
	if n := s.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
}

func TestCloseDisconnectsViewers(t *testing.T) {
	s, ts := testServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, s, 1)

	s.Close()
	if n := s.ClientCount(); n != 0 {
		t.Errorf("ClientCount after Close = %d, want 0", n)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after server Close")
	}
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d", n)
}
