package stream

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/observability"
)

// Handler receives connection lifecycle events and inbound frames.
// HandleOpen is invoked after every successful open with the new
// connection epoch; HandleClose after every loss of an open connection.
type Handler interface {
	HandleOpen(epoch uint64)
	HandleFrame(raw []byte)
	HandleClose(epoch uint64)
}

// Config configures connection behavior.
type Config struct {
	// Endpoint is the WebSocket URL of the RPC provider.
	Endpoint string
	// InitialBackoff is the floor of the reconnect interval.
	InitialBackoff time.Duration
	// MaxBackoff caps the reconnect interval.
	MaxBackoff time.Duration
	// BackoffMultiplier grows the interval after each failed attempt.
	BackoffMultiplier float64
	// MaxAttempts is the consecutive-failure ceiling; reaching it is fatal.
	MaxAttempts int
	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default connection configuration.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:          endpoint,
		InitialBackoff:    5 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 1.5,
		MaxAttempts:       10,
		HandshakeTimeout:  10 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Options configures a Conn.
type Options struct {
	Config  Config
	Handler Handler
	Logger  *log.Logger
	// OnFatal is invoked when the reconnect ceiling is reached.
	// The service assumes an external supervisor restarts the process.
	OnFatal func(error)
}

// Conn owns the transport socket and drives the
// connect/disconnect/reconnect lifecycle with exponential backoff.
type Conn struct {
	cfg     Config
	handler Handler
	logger  *log.Logger
	fatal   func(error)

	mu       sync.Mutex
	ws       *websocket.Conn
	timer    *time.Timer // pending reconnect, nil if none
	state    domain.ConnectionState
	backoff  time.Duration
	attempts int
	epoch    uint64
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a Conn. Call Connect to open the transport.
func New(opts Options) *Conn {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	c := &Conn{
		cfg:     opts.Config,
		handler: opts.Handler,
		logger:  logger,
		backoff: opts.Config.InitialBackoff,
		done:    make(chan struct{}),
	}

	c.fatal = opts.OnFatal
	if c.fatal == nil {
		c.fatal = func(err error) {
			logger.Fatalf("stream connection unrecoverable: %v", err)
		}
	}

	return c
}

// Connect opens the transport. No-op if already connecting or connected.
// On failure the next attempt is scheduled per the backoff policy; after
// MaxAttempts consecutive failures OnFatal is invoked.
func (c *Conn) Connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.state != domain.StateDisconnected {
		c.logger.Printf("connect skipped: already %s", c.state)
		c.mu.Unlock()
		return
	}
	c.state = domain.StateConnecting
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	ws, _, err := dialer.Dial(c.cfg.Endpoint, nil)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if ws != nil {
			ws.Close()
		}
		return
	}

	if err != nil {
		c.state = domain.StateDisconnected
		c.attempts++
		if c.attempts >= c.cfg.MaxAttempts {
			attempts := c.attempts
			c.mu.Unlock()
			c.fatal(fmt.Errorf("websocket dial failed after %d attempts: %w", attempts, err))
			return
		}
		delay := c.scheduleReconnectLocked()
		c.logger.Printf("websocket dial failed (attempt %d/%d), retrying in %s: %v",
			c.attempts, c.cfg.MaxAttempts, delay, err)
		c.mu.Unlock()
		return
	}

	c.ws = ws
	c.epoch++
	epoch := c.epoch
	c.state = domain.StateConnected
	// Counters reset only on a successful open, never on a mere send.
	c.attempts = 0
	c.backoff = c.cfg.InitialBackoff
	c.wg.Add(2)
	go c.readLoop(ws, epoch)
	go c.pingLoop(ws)
	c.mu.Unlock()

	c.logger.Printf("websocket connected (epoch %d)", epoch)
	c.handler.HandleOpen(epoch)
}

// Disconnect closes the transport and suppresses any scheduled reconnect.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	ws := c.ws
	c.ws = nil
	c.state = domain.StateDisconnected
	close(c.done)
	c.mu.Unlock()

	if ws != nil {
		ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		ws.Close()
	}

	c.wg.Wait()
	c.logger.Println("websocket disconnected")
}

// WriteJSON sends a message on the current connection. Fails fast when
// not connected; callers must not queue sends for later.
func (c *Conn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StateConnected || c.ws == nil {
		return fmt.Errorf("not connected")
	}

	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteJSON(v)
}

// State returns the current connection state.
func (c *Conn) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Epoch returns the current connection epoch. Incremented on every
// successful open; all subscription state is scoped to it.
func (c *Conn) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Attempts returns the consecutive failed reconnect attempts.
func (c *Conn) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// scheduleReconnectLocked arms the reconnect timer with the current
// backoff interval and grows the interval. Caller holds c.mu.
func (c *Conn) scheduleReconnectLocked() time.Duration {
	delay := c.backoff
	c.backoff = nextBackoff(c.backoff, c.cfg.BackoffMultiplier, c.cfg.MaxBackoff)
	c.timer = time.AfterFunc(delay, c.Connect)
	return delay
}

// nextBackoff grows the interval by the multiplier, capped at max.
func nextBackoff(cur time.Duration, multiplier float64, max time.Duration) time.Duration {
	next := time.Duration(float64(cur) * multiplier)
	if next > max {
		next = max
	}
	return next
}

// readLoop reads frames until the connection fails, then hands off to
// the disconnect path. One readLoop runs per connection epoch.
func (c *Conn) readLoop(ws *websocket.Conn, epoch uint64) {
	defer c.wg.Done()

	for {
		ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			c.handleConnLost(ws, epoch, err)
			return
		}
		c.handler.HandleFrame(msg)
	}
}

// handleConnLost transitions to DISCONNECTED after a read failure and
// schedules a reconnect unless the connection was closed deliberately.
func (c *Conn) handleConnLost(ws *websocket.Conn, epoch uint64, err error) {
	c.mu.Lock()
	if c.ws != ws {
		// Stale epoch: a newer connection already replaced this one.
		c.mu.Unlock()
		return
	}
	c.ws = nil
	ws.Close()
	c.state = domain.StateDisconnected
	closed := c.closed
	var delay time.Duration
	if !closed {
		delay = c.scheduleReconnectLocked()
	}
	c.mu.Unlock()

	if closed {
		return
	}

	observability.RecordReconnect()
	c.logger.Printf("websocket connection lost (epoch %d), reconnecting in %s: %v", epoch, delay, err)
	c.handler.HandleClose(epoch)
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Conn) pingLoop(ws *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			current := c.ws
			c.mu.Unlock()
			if current != ws {
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				// Reader notices the dead connection and reconnects.
				return
			}
		}
	}
}
