package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/clock"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/ident"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/random"
	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/storage"
)

// Controller manages the deathroll state machine: range narrowing,
// elimination, turn order, and winner determination
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	ident   ident.Generator
	logger  *slog.Logger
}

// NewController creates a new game controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	ident ident.Generator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		ident:   ident,
		logger:  logger,
	}
}

// StartResult carries the snapshots emitted after a game starts
type StartResult struct {
	Game model.GameSnapshot
	Room model.RoomSnapshot
}

// StartGame begins a new game in the room. Only the host may start; the
// game is built from the room's currently active players. The starting
// player is chosen uniformly at random to remove host-order advantage.
func (c *Controller) StartGame(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, startingRoll int) (*StartResult, error) {
	if startingRoll == 0 {
		startingRoll = model.DefaultStartingRoll
	}
	if startingRoll < 1 {
		return nil, model.ErrInvalidStartingRoll
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if !player.IsHost {
		return nil, model.ErrNotHost
	}

	if !room.CanStartGame() {
		return nil, model.ErrCannotStart
	}

	now := c.clock.Now()
	active := room.ActivePlayers()
	players := make([]*model.Player, len(active))
	copy(players, active)

	game := &model.Game{
		RoomID:       room.ID,
		Players:      players,
		CurrentIdx:   c.random.Intn(len(players)),
		Range:        model.RollRange{Min: 1, Max: startingRoll},
		StartingRoll: startingRoll,
		Rolls:        []model.RollRecord{},
		Status:       model.GameStatusActive,
		StartedAt:    now,
	}

	if err := room.StartGame(now); err != nil {
		return nil, err
	}
	room.Game = game

	first := game.CurrentPlayer()
	room.AddGameMessage(fmt.Sprintf("Game started! %s goes first!", first.Name), now)
	room.AddGameMessage(fmt.Sprintf("Roll between 1 and %d!", startingRoll), now)

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("room_id", string(room.ID)),
		slog.String("started_by", string(playerID)),
		slog.Int("player_count", len(players)),
		slog.Int("starting_roll", startingRoll),
	)

	return &StartResult{Game: game.Snapshot(), Room: room.Snapshot()}, nil
}

// RollResult carries the outcome of one roll and the snapshots emitted after it
type RollResult struct {
	Roll model.RollRecord
	Game model.GameSnapshot
	Room model.RoomSnapshot
}

// Roll draws a uniform integer in the current range for the given player
// and applies the deathroll rules: rolling the minimum eliminates the
// roller, any other result narrows the range for the next player.
func (c *Controller) Roll(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*RollResult, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Game == nil {
		return nil, model.ErrNoActiveGame
	}

	roll, err := c.applyRoll(room.Game, playerID)
	if err != nil {
		return nil, err
	}

	now := roll.Timestamp
	room.AddGameMessage(FormatRollMessage(*roll), now)
	if room.Game.Status == model.GameStatusFinished {
		room.FinishGame()
		room.AddGameMessage(FormatResultMessage(room.Game), now)
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("dice rolled",
		slog.String("room_id", string(room.ID)),
		slog.String("player", roll.PlayerName),
		slog.Int("result", roll.Result),
		slog.Int("range_max", roll.Range.Max),
		slog.Bool("eliminating", roll.IsEliminating),
	)

	return &RollResult{Roll: *roll, Game: room.Game.Snapshot(), Room: room.Snapshot()}, nil
}

// applyRoll runs the state machine for a single roll
func (c *Controller) applyRoll(g *model.Game, playerID model.PlayerID) (*model.RollRecord, error) {
	if g.Status != model.GameStatusActive {
		return nil, model.ErrGameNotActive
	}

	current := g.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return nil, model.ErrNotYourTurn
	}
	// Guarded defensively; the turn index should never rest on an
	// eliminated player.
	if current.IsEliminated {
		return nil, model.ErrPlayerEliminated
	}

	result := c.random.Intn(g.Range.Max) + g.Range.Min

	roll := model.RollRecord{
		ID:            c.ident.NewID(),
		PlayerID:      current.ID,
		PlayerName:    current.Name,
		Result:        result,
		Range:         g.Range,
		Timestamp:     c.clock.Now(),
		IsEliminating: result == g.Range.Min,
	}
	g.Rolls = append(g.Rolls, roll)

	if roll.IsEliminating {
		current.Eliminate()

		active := g.ActivePlayers()
		if len(active) <= 1 {
			g.Status = model.GameStatusFinished
			g.FinishedAt = roll.Timestamp
			if len(active) == 1 {
				g.Winner = active[0]
			}
			return &g.Rolls[len(g.Rolls)-1], nil
		}

		// Reset to the game's original starting range, not the range
		// before this roll, so elimination rounds start fresh.
		g.Range = model.RollRange{Min: 1, Max: g.StartingRoll}
	} else {
		g.Range = model.RollRange{Min: 1, Max: result}
	}

	c.advanceTurn(g)
	return &g.Rolls[len(g.Rolls)-1], nil
}

// advanceTurn moves to the next non-eliminated player in original join
// order, wrapping around. The scan is bounded by the player count; when no
// eligible player is found the game is forced to finished with no winner.
func (c *Controller) advanceTurn(g *model.Game) {
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		idx := (g.CurrentIdx + i) % n
		if !g.Players[idx].IsEliminated {
			g.CurrentIdx = idx
			return
		}
	}

	c.logger.Warn("no eligible player found advancing turn, forcing game end",
		slog.String("room_id", string(g.RoomID)))
	g.Status = model.GameStatusFinished
	g.FinishedAt = c.clock.Now()
	g.Winner = nil
}

// ResetGame returns the room to the lobby and discards the game. Host-only.
func (c *Controller) ResetGame(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (model.RoomSnapshot, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return model.RoomSnapshot{}, err
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return model.RoomSnapshot{}, model.ErrPlayerNotFound
	}
	if !player.IsHost {
		return model.RoomSnapshot{}, model.ErrNotHost
	}

	room.ResetGame(c.clock.Now())

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return model.RoomSnapshot{}, err
	}

	c.logger.Info("game reset",
		slog.String("room_id", string(room.ID)),
		slog.String("reset_by", string(playerID)),
	)

	return room.Snapshot(), nil
}

// FormatRollMessage renders the chat line describing a roll
func FormatRollMessage(roll model.RollRecord) string {
	if roll.IsEliminating {
		return fmt.Sprintf("%s rolls %d (%d-%d) and is eliminated!",
			roll.PlayerName, roll.Result, roll.Range.Min, roll.Range.Max)
	}
	return fmt.Sprintf("%s rolls %d (%d-%d)",
		roll.PlayerName, roll.Result, roll.Range.Min, roll.Range.Max)
}

// FormatResultMessage renders the chat line describing a finished game
func FormatResultMessage(g *model.Game) string {
	if g.Winner == nil {
		return "Game ended with no winner!"
	}
	return fmt.Sprintf("%s wins the Deathroll! Victory is theirs!", g.Winner.Name)
}
