// Package session contains the coordinator that translates inbound
// protocol events into room/game operations and outbound broadcasts.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/protocol"
	"github.com/deathroll-xyz/deathroll-go/internal/services/game"
	"github.com/deathroll-xyz/deathroll-go/internal/services/room"
)

// Sender is the transport-side messaging primitive the coordinator emits
// through: deliver to one connection, broadcast to a room group, or
// broadcast to a room group excluding one connection.
type Sender interface {
	SendTo(conn model.ConnectionID, event protocol.Event)
	BroadcastToRoom(roomID model.RoomID, event protocol.Event)
	BroadcastToRoomExcept(roomID model.RoomID, conn model.ConnectionID, event protocol.Event)
	JoinGroup(roomID model.RoomID, conn model.ConnectionID)
	LeaveGroup(roomID model.RoomID, conn model.ConnectionID)
}

// Config holds coordinator timing settings
type Config struct {
	// CleanupInterval is how often stale disconnected players are scanned for
	CleanupInterval time.Duration
	// DisconnectTimeout is how long a disconnected player is retained
	// before eviction
	DisconnectTimeout time.Duration
}

// DefaultConfig returns the default cleanup timings
func DefaultConfig() Config {
	return Config{
		CleanupInterval:   time.Minute,
		DisconnectTimeout: 5 * time.Minute,
	}
}

// Coordinator is the sole entry point for inbound protocol events. A
// single mutex serializes every handler (and the cleanup pass), so room,
// game, and registry state are never mutated concurrently.
type Coordinator struct {
	mu     sync.Mutex
	rooms  *room.Controller
	games  *game.Controller
	sender Sender
	cfg    Config
	logger *slog.Logger
}

// NewCoordinator creates a coordinator
func NewCoordinator(
	rooms *room.Controller,
	games *game.Controller,
	sender Sender,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		rooms:  rooms,
		games:  games,
		sender: sender,
		cfg:    cfg,
		logger: logger,
	}
}

// HandleEvent decodes and dispatches one inbound event. Any handler error
// is converted to an error reply to the originating connection; it never
// terminates the connection or affects other rooms.
func (c *Coordinator) HandleEvent(ctx context.Context, conn model.ConnectionID, env protocol.Envelope) {
	event, err := protocol.DecodeInbound(env)
	if err != nil {
		c.sender.SendTo(conn, protocol.NewError(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := event.(type) {
	case protocol.JoinRoom:
		err = c.handleJoin(ctx, conn, e)
	case protocol.LeaveRoom:
		err = c.handleLeave(ctx, conn)
	case protocol.StartGame:
		err = c.handleStartGame(ctx, conn, e)
	case protocol.RollDice:
		err = c.handleRoll(ctx, conn)
	case protocol.SendMessage:
		err = c.handleSendMessage(ctx, conn, e)
	case protocol.ResetGame:
		err = c.handleResetGame(ctx, conn)
	case protocol.GetRoomInfo:
		err = c.handleGetRoomInfo(ctx, conn, e)
	case protocol.Ping:
		c.sender.SendTo(conn, protocol.NewPong())
	}

	if err != nil {
		c.logger.Warn("event failed",
			slog.String("event", string(env.Type)),
			slog.String("conn", string(conn)),
			slog.String("error", err.Error()),
		)
		c.sender.SendTo(conn, protocol.NewError(err))
	}
}

func (c *Coordinator) handleJoin(ctx context.Context, conn model.ConnectionID, e protocol.JoinRoom) error {
	res, err := c.rooms.JoinRoom(ctx, e.RoomID, e.PlayerName, conn, e.IsGuest)
	if err != nil {
		return err
	}

	c.sender.JoinGroup(res.Room.ID, conn)
	c.sender.SendTo(conn, protocol.Event{
		Type: protocol.EventPlayerJoined,
		Data: protocol.PlayerJoinedPayload{Player: res.Player, Room: res.Room, Game: res.Game},
	})
	c.sender.BroadcastToRoomExcept(res.Room.ID, conn, protocol.Event{
		Type: protocol.EventRoomUpdated,
		Data: protocol.RoomUpdatedPayload{Room: res.Room},
	})
	c.sender.BroadcastToRoomExcept(res.Room.ID, conn, protocol.Event{
		Type: protocol.EventPlayerListUpdated,
		Data: protocol.PlayerListUpdatedPayload{Players: res.Room.Players},
	})
	return nil
}

func (c *Coordinator) handleLeave(ctx context.Context, conn model.ConnectionID) error {
	res, err := c.rooms.LeaveRoom(ctx, conn)
	if err != nil {
		return err
	}

	c.sender.LeaveGroup(res.RoomID, conn)
	if !res.RoomDeleted {
		c.sender.BroadcastToRoom(res.RoomID, protocol.Event{
			Type: protocol.EventRoomUpdated,
			Data: protocol.RoomUpdatedPayload{Room: res.Room},
		})
		c.sender.BroadcastToRoom(res.RoomID, protocol.Event{
			Type: protocol.EventPlayerListUpdated,
			Data: protocol.PlayerListUpdatedPayload{Players: res.Room.Players},
		})
	}
	c.sender.SendTo(conn, protocol.Event{Type: protocol.EventLeftRoom})
	return nil
}

func (c *Coordinator) handleStartGame(ctx context.Context, conn model.ConnectionID, e protocol.StartGame) error {
	playerID, roomID, err := c.rooms.Resolve(conn)
	if err != nil {
		return err
	}

	res, err := c.games.StartGame(ctx, roomID, playerID, e.StartingRoll)
	if err != nil {
		return err
	}

	c.sender.BroadcastToRoom(roomID, protocol.Event{
		Type: protocol.EventGameStarted,
		Data: protocol.GameStartedPayload{Game: res.Game, Room: res.Room},
	})
	return nil
}

func (c *Coordinator) handleRoll(ctx context.Context, conn model.ConnectionID) error {
	playerID, roomID, err := c.rooms.Resolve(conn)
	if err != nil {
		return err
	}

	res, err := c.games.Roll(ctx, roomID, playerID)
	if err != nil {
		return err
	}

	c.sender.BroadcastToRoom(roomID, protocol.Event{
		Type: protocol.EventDiceRolled,
		Data: protocol.DiceRolledPayload{Roll: res.Roll, GameState: res.Game, Room: res.Room},
	})

	if res.Game.Status == model.GameStatusFinished {
		c.sender.BroadcastToRoom(roomID, protocol.Event{
			Type: protocol.EventGameFinished,
			Data: protocol.GameFinishedPayload{GameState: res.Game, Winner: res.Game.Winner},
		})
	}
	return nil
}

func (c *Coordinator) handleSendMessage(ctx context.Context, conn model.ConnectionID, e protocol.SendMessage) error {
	playerID, roomID, err := c.rooms.Resolve(conn)
	if err != nil {
		return err
	}

	msg, err := c.rooms.SendMessage(ctx, roomID, playerID, e.Message)
	if err != nil {
		return err
	}

	c.sender.BroadcastToRoom(roomID, protocol.Event{
		Type: protocol.EventNewMessage,
		Data: protocol.NewMessagePayload{Message: msg},
	})
	return nil
}

func (c *Coordinator) handleResetGame(ctx context.Context, conn model.ConnectionID) error {
	playerID, roomID, err := c.rooms.Resolve(conn)
	if err != nil {
		return err
	}

	snap, err := c.games.ResetGame(ctx, roomID, playerID)
	if err != nil {
		return err
	}

	c.sender.BroadcastToRoom(roomID, protocol.Event{
		Type: protocol.EventGameReset,
		Data: protocol.GameResetPayload{Room: snap},
	})
	return nil
}

func (c *Coordinator) handleGetRoomInfo(ctx context.Context, conn model.ConnectionID, e protocol.GetRoomInfo) error {
	snap, err := c.rooms.GetRoomSnapshot(ctx, e.RoomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		c.sender.SendTo(conn, protocol.Event{
			Type: protocol.EventRoomInfo,
			Data: protocol.RoomInfoPayload{Exists: false},
		})
		return nil
	}
	if err != nil {
		return err
	}

	c.sender.SendTo(conn, protocol.Event{
		Type: protocol.EventRoomInfo,
		Data: protocol.RoomInfoPayload{
			Exists:      true,
			Room:        &snap,
			PlayerCount: snap.PlayerCount,
			CanJoin:     snap.CanJoin,
		},
	})
	return nil
}

// HandleDisconnect is driven by the transport when a connection drops.
// Membership is retained so the player can reconnect under the same name.
func (c *Coordinator) HandleDisconnect(ctx context.Context, conn model.ConnectionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.rooms.DisconnectPlayer(ctx, conn)
	if err != nil {
		// Connection was never in a room
		return
	}

	c.sender.LeaveGroup(res.RoomID, conn)
	c.sender.BroadcastToRoom(res.RoomID, protocol.Event{
		Type: protocol.EventPlayerDisconnected,
		Data: protocol.PlayerDisconnectedPayload{Player: res.Player, Room: res.Room},
	})
}

// CreateRoom creates a room on behalf of the REST surface
func (c *Coordinator) CreateRoom(ctx context.Context, hostName string, isGuest bool) (model.RoomSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.CreateRoom(ctx, hostName, isGuest)
}

// GetRoom looks up a room snapshot on behalf of the REST surface
func (c *Coordinator) GetRoom(ctx context.Context, roomID model.RoomID) (model.RoomSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.GetRoomSnapshot(ctx, roomID)
}

// RunCleanup periodically evicts players disconnected longer than the
// configured timeout until the context is cancelled. Each pass runs under
// the same mutex as event handling, so it cannot interleave with handlers
// or with itself.
func (c *Coordinator) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CleanupPass(ctx)
		}
	}
}

// CleanupPass runs a single eviction scan and broadcasts updates for
// affected rooms
func (c *Coordinator) CleanupPass(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	results, err := c.rooms.Cleanup(ctx, c.cfg.DisconnectTimeout)
	if err != nil {
		c.logger.Error("cleanup pass failed", slog.String("error", err.Error()))
		return
	}

	for _, res := range results {
		if res.RoomDeleted {
			continue
		}
		c.sender.BroadcastToRoom(res.RoomID, protocol.Event{
			Type: protocol.EventRoomUpdated,
			Data: protocol.RoomUpdatedPayload{Room: res.Room},
		})
		c.sender.BroadcastToRoom(res.RoomID, protocol.Event{
			Type: protocol.EventPlayerListUpdated,
			Data: protocol.PlayerListUpdatedPayload{Players: res.Room.Players},
		})
	}
}
