package model

import "time"

// MessageKind distinguishes chat entry sources
type MessageKind string

const (
	MessagePlayer MessageKind = "player"
	MessageSystem MessageKind = "system"
	MessageGame   MessageKind = "game"
)

const (
	// MaxStoredMessages is the cap on the per-room chat log
	MaxStoredMessages = 100
	// MaxSnapshotMessages is the number of entries exposed in snapshots
	MaxSnapshotMessages = 50
)

// ChatMessage is one entry in a room's chat log. IDs are assigned from a
// per-room monotonic counter so entries are ordered and distinguishable.
type ChatMessage struct {
	ID         int64       `json:"id"`
	PlayerID   PlayerID    `json:"playerId,omitempty"`
	PlayerName string      `json:"playerName"`
	Text       string      `json:"message"`
	Kind       MessageKind `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
}
