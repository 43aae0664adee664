// Package wsconn provides a production-grade WebSocket client with reconnection.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // connection name for diagnostics
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	PongTimeout    time.Duration
	MaxMessageSize int64 // 0 = library default
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
	}
}

// MessageHandler is invoked for every received message.
type MessageHandler func(ctx context.Context, msg []byte)

// StateChangeHandler is invoked on every state transition. err is non-nil
// when the transition was caused by a connection failure.
type StateChangeHandler func(state State, err error)

// Client is a production-grade WebSocket client.
type Client struct {
	config Config

	state   State
	stateMu sync.RWMutex

	conn   *websocket.Conn
	connMu sync.RWMutex

	onMessage     MessageHandler
	onStateChange StateChangeHandler
	handlersMu    sync.RWMutex

	messages   chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	reconnects atomic.Int32
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("wsconn: empty URL")
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = 30 * time.Second
	}

	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}, nil
}

// OnMessage registers the message handler. Must be called before Connect.
func (c *Client) OnMessage(h MessageHandler) {
	c.handlersMu.Lock()
	c.onMessage = h
	c.handlersMu.Unlock()
}

// OnStateChange registers the state transition handler.
func (c *Client) OnStateChange(h StateChangeHandler) {
	c.handlersMu.Lock()
	c.onStateChange = h
	c.handlersMu.Unlock()
}

// Connect establishes the WebSocket connection and starts the read loop.
// The connection outlives ctx; ctx only bounds the dial itself.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting, nil)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected, err)
		return fmt.Errorf("wsconn %s: dial %s: %w", c.config.Name, c.config.URL, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.setState(StateConnected, nil)

	go c.readLoop()
	if c.config.PingInterval > 0 {
		go c.pingLoop()
	}

	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return nil, err
	}
	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}
	return conn, nil
}

// Send sends a text message through the WebSocket.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return errors.New("wsconn: not connected")
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// SendJSON marshals v and sends it as a text message.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn: marshal: %w", err)
	}
	return c.Send(ctx, data)
}

// Messages returns the channel for receiving messages. Messages are dropped
// when the channel is full and no OnMessage handler is registered.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsConnected reports whether the connection is currently established.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close gracefully closes the WebSocket connection. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close(websocket.StatusNormalClosure, "client closing")
			c.conn = nil
		}
		c.connMu.Unlock()

		c.setState(StateClosed, nil)
	})
	return nil
}

func (c *Client) readLoop() {
	ctx := context.Background()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		if conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			if !c.reconnect(err) {
				return
			}
			continue
		}

		c.dispatch(ctx, data)
	}
}

func (c *Client) dispatch(ctx context.Context, msg []byte) {
	c.handlersMu.RLock()
	handler := c.onMessage
	c.handlersMu.RUnlock()

	if handler != nil {
		handler(ctx, msg)
		return
	}

	select {
	case c.messages <- msg:
	default:
		// Slow consumer: drop rather than block the read loop.
	}
}

// reconnect dials with exponential backoff. Returns false when the client is
// closed or the reconnect budget is exhausted.
func (c *Client) reconnect(cause error) bool {
	c.setState(StateReconnecting, cause)

	backoff := c.config.InitialBackoff

	for attempt := 1; ; attempt++ {
		if c.config.MaxReconnects > 0 && attempt > c.config.MaxReconnects {
			c.setState(StateDisconnected, cause)
			return false
		}

		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}

		dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := c.dial(dialCtx)
		cancel()

		if err == nil {
			c.connMu.Lock()
			c.conn = conn
			c.connMu.Unlock()

			c.reconnects.Add(1)
			c.setState(StateConnected, nil)
			return true
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn == nil || !c.IsConnected() {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), c.config.PongTimeout)
			_ = conn.Ping(ctx)
			cancel()
		}
	}
}

// Reconnects returns how many times the client has reconnected.
func (c *Client) Reconnects() int {
	return int(c.reconnects.Load())
}

func (c *Client) setState(state State, err error) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()

	c.handlersMu.RLock()
	handler := c.onStateChange
	c.handlersMu.RUnlock()

	if handler != nil {
		handler(state, err)
	}
}
