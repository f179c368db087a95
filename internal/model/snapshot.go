package model

import "time"

// Snapshots are deep copies handed to the transport and API layers.
// Recipients must never be able to mutate live server state through them.

// PlayerSnapshot is the exported view of a player
type PlayerSnapshot struct {
	ID           PlayerID  `json:"id"`
	Name         string    `json:"name"`
	IsHost       bool      `json:"isHost"`
	IsGuest      bool      `json:"isGuest"`
	IsEliminated bool      `json:"isEliminated"`
	IsConnected  bool      `json:"isConnected"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Snapshot returns the exported view of the player
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:           p.ID,
		Name:         p.Name,
		IsHost:       p.IsHost,
		IsGuest:      p.IsGuest,
		IsEliminated: p.IsEliminated,
		IsConnected:  p.IsConnected,
		JoinedAt:     p.JoinedAt,
	}
}

// RoomSnapshot is the exported view of a room, carrying at most the last
// MaxSnapshotMessages chat entries
type RoomSnapshot struct {
	ID           RoomID           `json:"id"`
	HostName     string           `json:"hostName"`
	IsGuestHost  bool             `json:"isGuestHost"`
	MaxPlayers   int              `json:"maxPlayers"`
	PlayerCount  int              `json:"playerCount"`
	Status       RoomStatus       `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	Players      []PlayerSnapshot `json:"players"`
	Messages     []ChatMessage    `json:"messages"`
	CanStartGame bool             `json:"canStartGame"`
	CanJoin      bool             `json:"canJoin"`
}

// Snapshot returns the exported view of the room
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		players[i] = p.Snapshot()
	}

	msgs := r.Messages
	if len(msgs) > MaxSnapshotMessages {
		msgs = msgs[len(msgs)-MaxSnapshotMessages:]
	}
	messages := make([]ChatMessage, len(msgs))
	copy(messages, msgs)

	return RoomSnapshot{
		ID:           r.ID,
		HostName:     r.HostName,
		IsGuestHost:  r.IsGuestHost,
		MaxPlayers:   r.MaxPlayers,
		PlayerCount:  len(r.Players),
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		Players:      players,
		Messages:     messages,
		CanStartGame: r.CanStartGame(),
		CanJoin:      r.Status == RoomStatusLobby && len(r.Players) < r.MaxPlayers,
	}
}

// PlayerListSnapshot returns the exported view of the full player list
func (r *Room) PlayerListSnapshot() []PlayerSnapshot {
	players := make([]PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		players[i] = p.Snapshot()
	}
	return players
}

// GameSnapshot is the exported view of a game's full state
type GameSnapshot struct {
	RoomID               RoomID           `json:"roomId"`
	Status               GameStatus       `json:"status"`
	CurrentPlayer        *PlayerSnapshot  `json:"currentPlayer"`
	CurrentRange         RollRange        `json:"currentRange"`
	OriginalStartingRoll int              `json:"originalStartingRoll"`
	ActivePlayers        []PlayerSnapshot `json:"activePlayers"`
	EliminatedPlayers    []PlayerSnapshot `json:"eliminatedPlayers"`
	Rolls                []RollRecord     `json:"rolls"`
	Winner               *PlayerSnapshot  `json:"winner"`
	StartedAt            time.Time        `json:"startedAt"`
	FinishedAt           *time.Time       `json:"finishedAt"`
	TotalRolls           int              `json:"totalRolls"`
}

// Snapshot returns the exported view of the game
func (g *Game) Snapshot() GameSnapshot {
	snapshotAll := func(players []*Player) []PlayerSnapshot {
		out := make([]PlayerSnapshot, len(players))
		for i, p := range players {
			out[i] = p.Snapshot()
		}
		return out
	}

	var current *PlayerSnapshot
	if cur := g.CurrentPlayer(); cur != nil {
		s := cur.Snapshot()
		current = &s
	}

	var winner *PlayerSnapshot
	if g.Winner != nil {
		s := g.Winner.Snapshot()
		winner = &s
	}

	var finishedAt *time.Time
	if !g.FinishedAt.IsZero() {
		t := g.FinishedAt
		finishedAt = &t
	}

	rolls := make([]RollRecord, len(g.Rolls))
	copy(rolls, g.Rolls)

	return GameSnapshot{
		RoomID:               g.RoomID,
		Status:               g.Status,
		CurrentPlayer:        current,
		CurrentRange:         g.Range,
		OriginalStartingRoll: g.StartingRoll,
		ActivePlayers:        snapshotAll(g.ActivePlayers()),
		EliminatedPlayers:    snapshotAll(g.EliminatedPlayers()),
		Rolls:                rolls,
		Winner:               winner,
		StartedAt:            g.StartedAt,
		FinishedAt:           finishedAt,
		TotalRolls:           len(g.Rolls),
	}
}
