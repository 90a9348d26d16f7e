// Package socket maintains a session's connection to the relay's
// broadcast channel. Inbound chat payloads are republished on the
// in-process bus; outbound envelopes are fire-and-forget.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/router"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Client is a reconnecting websocket client for the relay.
type Client struct {
	url    string
	bus    *bus.Bus
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// New creates a client for the relay at relayURL ("http://host:port";
// the scheme is rewritten for the websocket endpoint).
func New(relayURL string, b *bus.Bus, logger *zap.Logger) *Client {
	wsURL := strings.Replace(relayURL, "http", "ws", 1) + "/ws"
	return &Client{url: wsURL, bus: b, logger: logger}
}

// Start runs the connect/read loop until ctx is cancelled or Stop is
// called. Reconnects use exponential backoff.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

// Stop terminates the connection and the reconnect loop.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

// Broadcast implements router.Broadcaster. It does not wait for
// delivery; an error only means the envelope never left this session.
func (c *Client) Broadcast(_ context.Context, env router.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("relay socket not connected")
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) run(ctx context.Context) {
	backoff := initialBackoff
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("relay dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			c.bus.Publish(bus.KindSocketDown, err.Error())
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		backoff = initialBackoff
		c.logger.Info("relay socket connected", zap.String("url", c.url))
		c.bus.Publish(bus.KindSocketUp, nil)

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		c.bus.Publish(bus.KindSocketDown, "connection lost")
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("relay socket read failed", zap.Error(err))
			}
			return
		}

		var env router.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			c.logger.Warn("discarding malformed broadcast", zap.Error(err))
			continue
		}
		if env.ChatMessage == nil {
			continue
		}
		c.bus.Publish(bus.KindChatInbound, *env.ChatMessage)
	}
}
