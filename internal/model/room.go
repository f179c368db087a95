package model

import (
	"strings"
	"time"
)

// RoomID is the short join code identifying a room
type RoomID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "lobby"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// DefaultMaxPlayers is the fixed room capacity
const DefaultMaxPlayers = 8

// Room owns its player set, chat log, and at most one game. Players do not
// outlive their room; an empty room is deleted by the room controller.
type Room struct {
	ID          RoomID
	HostName    string
	IsGuestHost bool
	MaxPlayers  int
	Status      RoomStatus
	Players     []*Player // join order
	Messages    []ChatMessage
	MessageSeq  int64
	Game        *Game
	CreatedAt   time.Time
}

// NewRoom creates an empty lobby-state room
func NewRoom(id RoomID, hostName string, isGuestHost bool, now time.Time) *Room {
	return &Room{
		ID:          id,
		HostName:    hostName,
		IsGuestHost: isGuestHost,
		MaxPlayers:  DefaultMaxPlayers,
		Status:      RoomStatusLobby,
		Players:     []*Player{},
		Messages:    []ChatMessage{},
		CreatedAt:   now,
	}
}

// GetPlayer returns the player with the given ID, or nil
func (r *Room) GetPlayer(id PlayerID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// GetPlayerByName returns the player with the given display name,
// matched case-insensitively, or nil
func (r *Room) GetPlayerByName(name string) *Player {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// GetPlayerByConnection returns the player bound to the given connection, or nil
func (r *Room) GetPlayerByConnection(conn ConnectionID) *Player {
	for _, p := range r.Players {
		if p.ConnectionID == conn && conn != "" {
			return p
		}
	}
	return nil
}

// GetHost returns the current host player, or nil
func (r *Room) GetHost() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// ActivePlayers returns connected, non-eliminated players in join order
func (r *Room) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range r.Players {
		if p.IsConnected && !p.IsEliminated {
			active = append(active, p)
		}
	}
	return active
}

// IsEmpty reports whether the room has no players left
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// AddPlayer inserts a player into the room and appends a system chat entry.
// Fails when the room is at capacity or a game is in progress.
func (r *Room) AddPlayer(p *Player, now time.Time) error {
	if len(r.Players) >= r.MaxPlayers {
		return ErrRoomFull
	}
	if r.Status == RoomStatusPlaying {
		return ErrGameInProgress
	}

	r.Players = append(r.Players, p)
	r.AddSystemMessage(p.Name+" joined the room", now)
	return nil
}

// RemovePlayer removes the player with the given ID and returns it, or nil
// if not present. If the removed player was host and the room is non-empty,
// the earliest remaining player by join order is promoted.
func (r *Room) RemovePlayer(id PlayerID, now time.Time) *Player {
	idx := -1
	for i, p := range r.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	removed := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	r.AddSystemMessage(removed.Name+" left the room", now)

	if removed.IsHost && len(r.Players) > 0 {
		newHost := r.Players[0]
		newHost.IsHost = true
		r.HostName = newHost.Name
		r.AddSystemMessage(newHost.Name+" is now the host", now)
	}

	return removed
}

// DisconnectPlayer marks a member as disconnected without removing membership
func (r *Room) DisconnectPlayer(id PlayerID, now time.Time) *Player {
	p := r.GetPlayer(id)
	if p == nil {
		return nil
	}
	p.Disconnect()
	p.DisconnectedAt = now
	r.AddSystemMessage(p.Name+" disconnected", now)
	return p
}

// ReconnectPlayer restores a member's connectivity under a new connection ID
func (r *Room) ReconnectPlayer(id PlayerID, conn ConnectionID, now time.Time) *Player {
	p := r.GetPlayer(id)
	if p == nil {
		return nil
	}
	p.Reconnect(conn)
	r.AddSystemMessage(p.Name+" reconnected", now)
	return p
}

// CanStartGame reports whether a game can begin: the room must be in the
// lobby with at least two connected, non-eliminated players
func (r *Room) CanStartGame() bool {
	return r.Status == RoomStatusLobby && len(r.ActivePlayers()) >= 2
}

// StartGame transitions the room to playing. The caller is responsible for
// constructing and attaching the Game.
func (r *Room) StartGame(now time.Time) error {
	if !r.CanStartGame() {
		return ErrCannotStart
	}
	r.Status = RoomStatusPlaying
	r.AddGameMessage("The Deathroll begins! May fortune favor the bold!", now)
	return nil
}

// FinishGame transitions the room to finished
func (r *Room) FinishGame() {
	r.Status = RoomStatusFinished
}

// ResetGame returns the room to the lobby, discards the game, and clears
// every player's eliminated flag
func (r *Room) ResetGame(now time.Time) {
	r.Status = RoomStatusLobby
	r.Game = nil
	for _, p := range r.Players {
		p.Reset()
	}
	r.AddGameMessage("Game has been reset. Ready for another round!", now)
}

// AddMessage appends a player chat entry. The text is trimmed; membership
// is required.
func (r *Room) AddMessage(playerID PlayerID, text string, now time.Time) (*ChatMessage, error) {
	p := r.GetPlayer(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return r.appendMessage(ChatMessage{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Text:       strings.TrimSpace(text),
		Kind:       MessagePlayer,
		Timestamp:  now,
	}), nil
}

// AddSystemMessage appends a system chat entry
func (r *Room) AddSystemMessage(text string, now time.Time) *ChatMessage {
	return r.appendMessage(ChatMessage{
		PlayerName: "System",
		Text:       text,
		Kind:       MessageSystem,
		Timestamp:  now,
	})
}

// AddGameMessage appends a game chat entry
func (r *Room) AddGameMessage(text string, now time.Time) *ChatMessage {
	return r.appendMessage(ChatMessage{
		PlayerName: "Game",
		Text:       text,
		Kind:       MessageGame,
		Timestamp:  now,
	})
}

func (r *Room) appendMessage(msg ChatMessage) *ChatMessage {
	r.MessageSeq++
	msg.ID = r.MessageSeq
	r.Messages = append(r.Messages, msg)
	if len(r.Messages) > MaxStoredMessages {
		r.Messages = r.Messages[len(r.Messages)-MaxStoredMessages:]
	}
	return &r.Messages[len(r.Messages)-1]
}
