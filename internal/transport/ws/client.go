package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// client is one WebSocket connection. The read pump delivers envelopes
// to the hub's handler; the write pump drains the send buffer and keeps
// the connection alive with pings.
type client struct {
	id   model.ConnectionID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// enqueue hands a frame to the write pump without blocking. A client that
// cannot keep up gets its connection closed; the read pump then runs the
// normal disconnect path.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("send buffer full, closing connection",
			slog.String("conn", string(c.id)),
		)
		c.conn.Close()
	}
}

func (c *client) readPump(ctx context.Context) {
	defer c.close(ctx)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("read failed",
					slog.String("conn", string(c.id)),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.enqueueEvent(protocol.NewError(protocol.ErrInvalidPayload))
			continue
		}

		c.hub.handler.HandleEvent(ctx, c.id, env)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) enqueueEvent(event protocol.Event) {
	if data, err := c.hub.encode(event); err == nil {
		c.enqueue(data)
	}
}

// close tears down the connection exactly once: hub removal, disconnect
// notification, and channel/socket cleanup.
func (c *client) close(ctx context.Context) {
	if !c.hub.remove(c) {
		return
	}

	// The request context may already be cancelled by the time the
	// connection drops; disconnect handling still has to run.
	c.hub.handler.HandleDisconnect(context.WithoutCancel(ctx), c.id)
	close(c.send)
	c.conn.Close()

	c.hub.logger.Info("connection closed", slog.String("conn", string(c.id)))
}
