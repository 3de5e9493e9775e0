package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"solana-wallet-radar/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// recordingHandler collects lifecycle events and frames.
type recordingHandler struct {
	mu     sync.Mutex
	opens  []uint64
	closes []uint64
	frames [][]byte
	opened chan uint64
	framed chan []byte
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		opened: make(chan uint64, 16),
		framed: make(chan []byte, 16),
	}
}

func (h *recordingHandler) HandleOpen(epoch uint64) {
	h.mu.Lock()
	h.opens = append(h.opens, epoch)
	h.mu.Unlock()
	h.opened <- epoch
}

func (h *recordingHandler) HandleClose(epoch uint64) {
	h.mu.Lock()
	h.closes = append(h.closes, epoch)
	h.mu.Unlock()
}

func (h *recordingHandler) HandleFrame(raw []byte) {
	h.mu.Lock()
	h.frames = append(h.frames, raw)
	h.mu.Unlock()
	h.framed <- raw
}

func (h *recordingHandler) closeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.closes)
}

// fastConfig keeps test reconnects quick.
func fastConfig(endpoint string) Config {
	cfg := DefaultConfig(endpoint)
	cfg.InitialBackoff = 50 * time.Millisecond
	cfg.MaxBackoff = 500 * time.Millisecond
	cfg.HandshakeTimeout = 2 * time.Second
	return cfg
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestConn_ConnectDeliversFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"hello":"world"}`)); err != nil {
			return
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	handler := newRecordingHandler()
	c := New(Options{
		Config:  fastConfig(wsURL(server)),
		Handler: handler,
		OnFatal: func(err error) { t.Errorf("unexpected fatal: %v", err) },
	})
	defer c.Disconnect()

	c.Connect()

	select {
	case epoch := <-handler.opened:
		if epoch != 1 {
			t.Errorf("expected epoch 1, got %d", epoch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for open")
	}

	if got := c.State(); got != domain.StateConnected {
		t.Errorf("expected CONNECTED, got %s", got)
	}
	if got := c.Attempts(); got != 0 {
		t.Errorf("expected 0 attempts after successful open, got %d", got)
	}

	select {
	case frame := <-handler.framed:
		if string(frame) != `{"hello":"world"}` {
			t.Errorf("unexpected frame: %s", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestConn_ConnectNoOpWhenConnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	handler := newRecordingHandler()
	c := New(Options{Config: fastConfig(wsURL(server)), Handler: handler})
	defer c.Disconnect()

	c.Connect()
	<-handler.opened

	// Second connect must not open a new epoch.
	c.Connect()

	select {
	case epoch := <-handler.opened:
		t.Errorf("unexpected second open with epoch %d", epoch)
	case <-time.After(200 * time.Millisecond):
	}

	if got := c.Epoch(); got != 1 {
		t.Errorf("expected epoch 1, got %d", got)
	}
}

func TestConn_ReconnectAfterDrop(t *testing.T) {
	var mu sync.Mutex
	conns := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()

		if first {
			// Drop the first connection immediately.
			conn.Close()
			return
		}

		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	handler := newRecordingHandler()
	c := New(Options{
		Config:  fastConfig(wsURL(server)),
		Handler: handler,
		OnFatal: func(err error) { t.Errorf("unexpected fatal: %v", err) },
	})
	defer c.Disconnect()

	c.Connect()

	// First open, then the drop, then the reconnected epoch.
	var epochs []uint64
	for len(epochs) < 2 {
		select {
		case epoch := <-handler.opened:
			epochs = append(epochs, epoch)
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for reconnect, got epochs %v", epochs)
		}
	}

	if epochs[0] != 1 || epochs[1] != 2 {
		t.Errorf("expected epochs [1 2], got %v", epochs)
	}
	if handler.closeCount() == 0 {
		t.Error("expected HandleClose after drop")
	}
	if got := c.Attempts(); got != 0 {
		t.Errorf("expected attempts reset after reconnect, got %d", got)
	}
}

func TestConn_DisconnectSuppressesReconnect(t *testing.T) {
	var mu sync.Mutex
	conns := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		conns++
		mu.Unlock()
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	handler := newRecordingHandler()
	c := New(Options{Config: fastConfig(wsURL(server)), Handler: handler})

	c.Connect()
	<-handler.opened

	c.Disconnect()

	// Wait past several backoff intervals; no reconnect may happen.
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	got := conns
	mu.Unlock()
	if got != 1 {
		t.Errorf("expected 1 connection total, got %d", got)
	}
	if state := c.State(); state != domain.StateDisconnected {
		t.Errorf("expected DISCONNECTED, got %s", state)
	}
}

func TestConn_WriteJSONFailsFastWhenDisconnected(t *testing.T) {
	c := New(Options{Config: fastConfig("ws://127.0.0.1:1")})

	if err := c.WriteJSON(map[string]string{"k": "v"}); err == nil {
		t.Error("expected error writing while disconnected")
	}
}

func TestConn_FatalAfterMaxAttempts(t *testing.T) {
	cfg := fastConfig("ws://127.0.0.1:1") // nothing listens here
	cfg.InitialBackoff = 10 * time.Millisecond
	cfg.MaxBackoff = 20 * time.Millisecond
	cfg.MaxAttempts = 3

	fatal := make(chan error, 1)
	c := New(Options{
		Config:  cfg,
		Handler: newRecordingHandler(),
		OnFatal: func(err error) { fatal <- err },
	})
	defer c.Disconnect()

	c.Connect()

	select {
	case err := <-fatal:
		if err == nil {
			t.Error("expected non-nil fatal error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for fatal")
	}

	if got := c.Attempts(); got != cfg.MaxAttempts {
		t.Errorf("expected %d attempts, got %d", cfg.MaxAttempts, got)
	}
}

func TestNextBackoff_Sequence(t *testing.T) {
	cfg := DefaultConfig("ws://unused")

	var delays []time.Duration
	backoff := cfg.InitialBackoff
	for i := 0; i < 10; i++ {
		delays = append(delays, backoff)
		backoff = nextBackoff(backoff, cfg.BackoffMultiplier, cfg.MaxBackoff)
	}

	want := []time.Duration{
		5000 * time.Millisecond,
		7500 * time.Millisecond,
		11250 * time.Millisecond,
		16875 * time.Millisecond,
		25312500 * time.Microsecond,
		37968750 * time.Microsecond,
		56953125 * time.Microsecond,
		60 * time.Second,
		60 * time.Second,
		60 * time.Second,
	}

	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i, want[i], delays[i])
		}
		if delays[i] > cfg.MaxBackoff {
			t.Errorf("delay %d exceeds cap: %v", i, delays[i])
		}
	}
}
