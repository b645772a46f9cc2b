// Package marketdata streams exchange market data over a combined
// WebSocket stream and decodes it into domain types. It is the only
// package that performs network I/O for market data; the decision and
// backtest core consumes its output through the handler callbacks.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tradelab/internal/domain"
	"tradelab/internal/observability"
)

// Config configures WebSocket client behavior.
type Config struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default WebSocket configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Handlers receives decoded events. Nil handlers skip their stream.
// Handlers run on the read goroutine; a slow handler stalls the feed,
// never reorders it.
type Handlers struct {
	OnCandle func(CandleUpdate)
	OnTick   func(symbol string, tick domain.Tick)
	OnBook   func(snapshot domain.OrderBookSnapshot)
}

// Client streams a fixed set of combined streams. The stream set is
// part of the connection URL, so reconnecting re-establishes every
// subscription implicitly.
type Client struct {
	endpoint string
	streams  []string
	config   Config
	handlers Handlers
	log      *logrus.Entry

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup

	// now is swappable for decode tests
	now func() int64
}

// NewClient connects to the endpoint and starts the read and ping
// loops. Streams use exchange notation, e.g. "btcusdt@kline_1m".
func NewClient(ctx context.Context, endpoint string, streams []string, handlers Handlers, config *Config, logger *logrus.Logger) (*Client, error) {
	if len(streams) == 0 {
		return nil, fmt.Errorf("no streams requested")
	}
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &Client{
		endpoint: endpoint,
		streams:  streams,
		config:   cfg,
		handlers: handlers,
		log:      logger.WithField("component", "marketdata"),
		done:     make(chan struct{}),
		now:      func() int64 { return time.Now().UnixMilli() },
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(c.streams, "/")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	c.log.WithField("streams", len(c.streams)).Info("connected")
	return nil
}

// Close closes the WebSocket connection and stops the loops.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages and dispatches them to the handlers.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			// Exponential backoff for the next attempt
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect waits out the backoff delay and re-establishes the
// connection. The stream set rides on the URL, so no resubscription
// round trips are needed.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}
	observability.RecordFeedReconnect()

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		c.log.WithError(err).Warn("reconnect failed, will retry on next read error")
		return
	}
}

// handleMessage decodes one combined-stream frame and dispatches it by
// stream kind. Malformed frames are logged and dropped; one bad frame
// must not kill the feed.
func (c *Client) handleMessage(message []byte) {
	var env combinedEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		observability.RecordFeedEventDropped("unknown")
		c.log.WithError(err).Warn("malformed frame")
		return
	}

	switch streamKind(env.Stream) {
	case streamKline:
		if c.handlers.OnCandle == nil {
			return
		}
		upd, err := decodeKline(env.Data)
		if err != nil {
			observability.RecordFeedEventDropped(env.Stream)
			c.log.WithError(err).WithField("stream", env.Stream).Warn("dropped event")
			return
		}
		c.handlers.OnCandle(*upd)

	case streamAggTrade:
		if c.handlers.OnTick == nil {
			return
		}
		symbol, tick, err := decodeAggTrade(env.Data)
		if err != nil {
			observability.RecordFeedEventDropped(env.Stream)
			c.log.WithError(err).WithField("stream", env.Stream).Warn("dropped event")
			return
		}
		c.handlers.OnTick(symbol, tick)

	case streamBookTicker:
		if c.handlers.OnBook == nil {
			return
		}
		snap, err := decodeBookTicker(env.Data, c.now())
		if err != nil {
			observability.RecordFeedEventDropped(env.Stream)
			c.log.WithError(err).WithField("stream", env.Stream).Warn("dropped event")
			return
		}
		c.handlers.OnBook(snap)
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
					c.log.WithError(err).Debug("ping failed")
				}
			}
			c.connMu.Unlock()
		}
	}
}
