// Package ws is the WebSocket transport: it owns connections and room
// groups, upgrades HTTP requests, and delivers framed events between
// clients and the session coordinator.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/ident"
	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/protocol"
)

// EventHandler receives transport-level callbacks. The hub never
// interprets payloads itself.
type EventHandler interface {
	HandleEvent(ctx context.Context, conn model.ConnectionID, env protocol.Envelope)
	HandleDisconnect(ctx context.Context, conn model.ConnectionID)
}

// Hub tracks live connections and their room groups. It implements the
// coordinator's Sender interface; sends are non-blocking, and a client
// whose send buffer is full is dropped rather than allowed to stall a
// broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnectionID]*client
	groups  map[model.RoomID]map[model.ConnectionID]*client

	handler  EventHandler
	ident    ident.Generator
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHub creates a hub with no connections. SetHandler must be called
// before the hub serves traffic.
func NewHub(ident ident.Generator, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnectionID]*client),
		groups:  make(map[model.RoomID]map[model.ConnectionID]*client),
		ident:   ident,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetHandler wires the event handler. Separate from NewHub because the
// coordinator and hub reference each other.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

// ServeHTTP upgrades the request and runs the connection until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		id:   model.ConnectionID(h.ident.NewID()),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Info("connection opened", slog.String("conn", string(c.id)))

	go c.writePump()
	c.readPump(r.Context())
}

// SendTo delivers an event to a single connection
func (h *Hub) SendTo(conn model.ConnectionID, event protocol.Event) {
	data, err := h.encode(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	c, ok := h.clients[conn]
	h.mu.RUnlock()
	if ok {
		c.enqueue(data)
	}
}

// BroadcastToRoom delivers an event to every connection in a room group
func (h *Hub) BroadcastToRoom(roomID model.RoomID, event protocol.Event) {
	h.broadcast(roomID, "", event)
}

// BroadcastToRoomExcept delivers an event to every connection in a room
// group except one
func (h *Hub) BroadcastToRoomExcept(roomID model.RoomID, except model.ConnectionID, event protocol.Event) {
	h.broadcast(roomID, except, event)
}

func (h *Hub) broadcast(roomID model.RoomID, except model.ConnectionID, event protocol.Event) {
	data, err := h.encode(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	group := h.groups[roomID]
	targets := make([]*client, 0, len(group))
	for id, c := range group {
		if id == except {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(data)
	}
}

// JoinGroup adds a connection to a room group
func (h *Hub) JoinGroup(roomID model.RoomID, conn model.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[conn]
	if !ok {
		return
	}
	group, ok := h.groups[roomID]
	if !ok {
		group = make(map[model.ConnectionID]*client)
		h.groups[roomID] = group
	}
	group[conn] = c
}

// LeaveGroup removes a connection from a room group, dropping the group
// when it empties
func (h *Hub) LeaveGroup(roomID model.RoomID, conn model.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromGroup(roomID, conn)
}

func (h *Hub) removeFromGroup(roomID model.RoomID, conn model.ConnectionID) {
	group, ok := h.groups[roomID]
	if !ok {
		return
	}
	delete(group, conn)
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// ConnectionCount reports the number of live connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) encode(event protocol.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("event encoding failed",
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return data, nil
}

// remove drops the client from the hub and every group. Returns whether
// the client was still registered, so disconnect handling runs once.
func (h *Hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return false
	}
	delete(h.clients, c.id)
	for roomID := range h.groups {
		h.removeFromGroup(roomID, c.id)
	}
	return true
}
