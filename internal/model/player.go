package model

import "time"

// PlayerID uniquely identifies a player across the system.
// It is stable across disconnects and reconnects.
type PlayerID string

// ConnectionID identifies a single live transport connection.
// A player's connection ID changes every time they reconnect.
type ConnectionID string

// Player represents a participant in a room
type Player struct {
	ID           PlayerID
	Name         string
	ConnectionID ConnectionID // empty while disconnected
	IsHost       bool
	IsGuest      bool // true for unregistered players
	IsEliminated bool
	IsConnected  bool
	JoinedAt     time.Time
	// DisconnectedAt is set while the player is disconnected and is used
	// by the periodic cleanup to decide eviction. Zero while connected.
	DisconnectedAt time.Time
}

// Eliminate marks the player as eliminated. Idempotent.
func (p *Player) Eliminate() {
	p.IsEliminated = true
}

// Reset clears the eliminated flag, used when a game is reset
func (p *Player) Reset() {
	p.IsEliminated = false
}

// Disconnect clears connectivity but retains the player's identity
func (p *Player) Disconnect() {
	p.IsConnected = false
	p.ConnectionID = ""
}

// Reconnect restores connectivity under a new connection ID
func (p *Player) Reconnect(conn ConnectionID) {
	p.ConnectionID = conn
	p.IsConnected = true
	p.DisconnectedAt = time.Time{}
}
