package room

import (
	"sync"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
)

// Registry holds the process-wide identity mappings: transient connection
// IDs to durable player IDs, and player IDs to their room. It is rebuilt
// on every join/leave/reconnect/disconnect and is never persisted.
//
// Invariants: a connection maps to at most one player, and a player maps
// to at most one room.
type Registry struct {
	mu           sync.RWMutex
	connToPlayer map[model.ConnectionID]model.PlayerID
	playerToRoom map[model.PlayerID]model.RoomID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		connToPlayer: make(map[model.ConnectionID]model.PlayerID),
		playerToRoom: make(map[model.PlayerID]model.RoomID),
	}
}

// Bind registers both mappings for a player. Any previous connection bound
// to the player must be unbound by the caller first.
func (r *Registry) Bind(conn model.ConnectionID, playerID model.PlayerID, roomID model.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connToPlayer[conn] = playerID
	r.playerToRoom[playerID] = roomID
}

// UnbindConnection drops only the connection mapping, keeping the
// player-to-room mapping so the player can reconnect later.
func (r *Registry) UnbindConnection(conn model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connToPlayer, conn)
}

// UnbindPlayer drops all mappings for a player
func (r *Registry) UnbindPlayer(conn model.ConnectionID, playerID model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn != "" {
		delete(r.connToPlayer, conn)
	}
	delete(r.playerToRoom, playerID)
}

// PlayerForConnection resolves a connection to a player ID
func (r *Registry) PlayerForConnection(conn model.ConnectionID) (model.PlayerID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.connToPlayer[conn]
	return id, ok
}

// RoomForPlayer resolves a player to their room ID
func (r *Registry) RoomForPlayer(playerID model.PlayerID) (model.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.playerToRoom[playerID]
	return id, ok
}

// Resolve maps a connection to its player and room in one step
func (r *Registry) Resolve(conn model.ConnectionID) (model.PlayerID, model.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	playerID, ok := r.connToPlayer[conn]
	if !ok {
		return "", "", false
	}
	roomID, ok := r.playerToRoom[playerID]
	if !ok {
		return "", "", false
	}
	return playerID, roomID, true
}
