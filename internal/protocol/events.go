// Package protocol defines the closed set of inbound and outbound event
// kinds exchanged with clients, with strict payload shapes. Payloads are
// validated before dispatch; unknown kinds are rejected.
package protocol

import (
	"encoding/json"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
)

// EventType identifies a protocol event kind
type EventType string

// Inbound event kinds
const (
	EventJoinRoom    EventType = "join-room"
	EventLeaveRoom   EventType = "leave-room"
	EventStartGame   EventType = "start-game"
	EventRollDice    EventType = "roll-dice"
	EventSendMessage EventType = "send-message"
	EventResetGame   EventType = "reset-game"
	EventGetRoomInfo EventType = "get-room-info"
	EventPing        EventType = "ping"
)

// Outbound event kinds
const (
	EventPlayerJoined       EventType = "player-joined"
	EventRoomUpdated        EventType = "room-updated"
	EventPlayerListUpdated  EventType = "player-list-updated"
	EventGameStarted        EventType = "game-started"
	EventDiceRolled         EventType = "dice-rolled"
	EventGameFinished       EventType = "game-finished"
	EventGameReset          EventType = "game-reset"
	EventNewMessage         EventType = "new-message"
	EventLeftRoom           EventType = "left-room"
	EventPlayerDisconnected EventType = "player-disconnected"
	EventRoomInfo           EventType = "room-info"
	EventError              EventType = "error"
	EventPong               EventType = "pong"
)

// Envelope is the wire framing for every event in both directions
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound event ready for encoding
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// Outbound payloads

// PlayerJoinedPayload is the direct reply to a successful join
type PlayerJoinedPayload struct {
	Player model.PlayerSnapshot `json:"player"`
	Room   model.RoomSnapshot   `json:"room"`
	Game   *model.GameSnapshot  `json:"game"`
}

// RoomUpdatedPayload carries a fresh room snapshot
type RoomUpdatedPayload struct {
	Room model.RoomSnapshot `json:"room"`
}

// PlayerListUpdatedPayload carries the full player list
type PlayerListUpdatedPayload struct {
	Players []model.PlayerSnapshot `json:"players"`
}

// GameStartedPayload announces a new game
type GameStartedPayload struct {
	Game model.GameSnapshot `json:"game"`
	Room model.RoomSnapshot `json:"room"`
}

// DiceRolledPayload announces a roll outcome
type DiceRolledPayload struct {
	Roll      model.RollRecord   `json:"roll"`
	GameState model.GameSnapshot `json:"gameState"`
	Room      model.RoomSnapshot `json:"room"`
}

// GameFinishedPayload announces a terminal game state
type GameFinishedPayload struct {
	GameState model.GameSnapshot    `json:"gameState"`
	Winner    *model.PlayerSnapshot `json:"winner"`
}

// GameResetPayload announces a room returning to the lobby
type GameResetPayload struct {
	Room model.RoomSnapshot `json:"room"`
}

// NewMessagePayload carries one new chat entry
type NewMessagePayload struct {
	Message model.ChatMessage `json:"message"`
}

// PlayerDisconnectedPayload announces a member losing connectivity
type PlayerDisconnectedPayload struct {
	Player model.PlayerSnapshot `json:"player"`
	Room   model.RoomSnapshot   `json:"room"`
}

// RoomInfoPayload is the reply to a room existence lookup
type RoomInfoPayload struct {
	Exists      bool                `json:"exists"`
	Room        *model.RoomSnapshot `json:"room,omitempty"`
	PlayerCount int                 `json:"playerCount,omitempty"`
	CanJoin     bool                `json:"canJoin,omitempty"`
}

// ErrorPayload carries an error message to the originating connection
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewError builds an error event from any handler failure
func NewError(err error) Event {
	return Event{Type: EventError, Data: ErrorPayload{Message: err.Error()}}
}

// NewPong builds the heartbeat reply
func NewPong() Event {
	return Event{Type: EventPong}
}
