package model

import "time"

// GameStatus represents the current phase of a game
type GameStatus string

const (
	GameStatusActive   GameStatus = "active"
	GameStatusFinished GameStatus = "finished"
)

// DefaultStartingRoll is the upper roll bound when the host does not choose one
const DefaultStartingRoll = 1000

// RollRange is the inclusive range the current player must roll within.
// Min is always 1.
type RollRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RollRecord is one entry in a game's append-only roll history
type RollRecord struct {
	ID            string    `json:"id"`
	PlayerID      PlayerID  `json:"playerId"`
	PlayerName    string    `json:"playerName"`
	Result        int       `json:"result"`
	Range         RollRange `json:"range"`
	Timestamp     time.Time `json:"timestamp"`
	IsEliminating bool      `json:"isEliminating"`
}

// Game is one played-out round of the elimination dice mechanic. The player
// set is fixed at start and shares Player pointers with the owning room, so
// eliminations are visible in both views.
type Game struct {
	RoomID RoomID

	Players    []*Player
	CurrentIdx int

	Range        RollRange
	StartingRoll int // the original max, restored after an elimination

	Rolls  []RollRecord
	Status GameStatus
	Winner *Player

	StartedAt  time.Time
	FinishedAt time.Time
}

// CurrentPlayer returns the player whose turn it is, or nil when the game
// is not active
func (g *Game) CurrentPlayer() *Player {
	if g.Status != GameStatusActive || g.CurrentIdx >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentIdx]
}

// ActivePlayers returns the non-eliminated players in original join order
func (g *Game) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range g.Players {
		if !p.IsEliminated {
			active = append(active, p)
		}
	}
	return active
}

// EliminatedPlayers returns the eliminated players in original join order
func (g *Game) EliminatedPlayers() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.IsEliminated {
			out = append(out, p)
		}
	}
	return out
}

// IsPlayerTurn reports whether the given player may roll right now
func (g *Game) IsPlayerTurn(id PlayerID) bool {
	cur := g.CurrentPlayer()
	return cur != nil && cur.ID == id
}
