package server

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/player"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Delivery is the part of the hub a client feeds.
type Delivery interface {
	Deliver(ctx context.Context, p player.Peer, message []byte) error
	Disconnect(ctx context.Context, p player.Peer)
}

// Client is one websocket connection. It implements player.Peer.
type Client struct {
	*player.Player
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	maxSize   int64
}

func newClient(p *player.Player, sendBuffer int, maxSize int64) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 1
	}
	return &Client{
		Player:  p,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		maxSize: maxSize,
	}
}

// Send queues data for the write pump without blocking. It reports false when
// the queue is full or the connection is closed.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.Conn.Close(); err != nil {
			slog.Debug("Error closing connection", "player.id", c.ID(), "error", err)
		}
	})
}

// readPump reads frames until the connection fails, handing each one to the
// hub, then tells the hub the player is gone.
func (c *Client) readPump(ctx context.Context, hub Delivery) {
	defer func() {
		hub.Disconnect(ctx, c)
		c.close()
	}()

	if c.maxSize > 0 {
		c.Conn.SetReadLimit(c.maxSize)
	}
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.WarnContext(ctx, "Could not set read deadline", "player.id", c.ID(), "error", err)
		return
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.WarnContext(ctx, "Player connection error", "player.id", c.ID(), "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			slog.DebugContext(ctx, "Ignoring non-text frame", "player.id", c.ID(), "frame.type", messageType)
			continue
		}
		if err := hub.Deliver(ctx, c, msg); err != nil {
			slog.WarnContext(ctx, "Could not deliver message", "player.id", c.ID(), "error", err)
			return
		}
	}
}

// writePump writes queued frames, one message per frame, and keeps the
// connection alive with pings.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				slog.WarnContext(ctx, "Error writing message to player", "player.id", c.ID(), "error", err)
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				slog.DebugContext(ctx, "Ping failed", "player.id", c.ID(), "error", err)
				return
			}

		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}
