package room

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/clock"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/ident"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/random"
	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/storage"
)

const (
	// RoomIDLength is the length of generated room codes
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room codes
	RoomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Controller manages room membership, chat, and the identity registry
type Controller struct {
	storage  storage.Storage
	registry *Registry
	clock    clock.Clock
	random   random.Random
	ident    ident.Generator
	logger   *slog.Logger
}

// NewController creates a new room controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	ident ident.Generator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		registry: NewRegistry(),
		clock:    clock,
		random:   random,
		ident:    ident,
		logger:   logger,
	}
}

// CreateRoom creates a new empty room. The host joins afterwards through
// the normal join path; the first joiner matching hostName becomes host.
func (c *Controller) CreateRoom(ctx context.Context, hostName string, isGuest bool) (model.RoomSnapshot, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return model.RoomSnapshot{}, model.ErrHostNameRequired
	}

	// Generate a unique room code, regenerating on collision
	var id model.RoomID
	for {
		id = model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet))
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			return model.RoomSnapshot{}, err
		}
		if !exists {
			break
		}
	}

	room := model.NewRoom(id, hostName, isGuest, c.clock.Now())
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return model.RoomSnapshot{}, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("host_name", hostName),
	)

	return room.Snapshot(), nil
}

// GetRoomSnapshot returns the exported view of a room
func (c *Controller) GetRoomSnapshot(ctx context.Context, roomID model.RoomID) (model.RoomSnapshot, error) {
	if roomID == "" {
		return model.RoomSnapshot{}, model.ErrRoomIDRequired
	}
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

// Resolve maps a connection to its player and room, failing with
// ErrPlayerNotFound when the connection is unknown
func (c *Controller) Resolve(conn model.ConnectionID) (model.PlayerID, model.RoomID, error) {
	playerID, roomID, ok := c.registry.Resolve(conn)
	if !ok {
		return "", "", model.ErrPlayerNotFound
	}
	return playerID, roomID, nil
}

// JoinResult carries everything the coordinator needs after a join
type JoinResult struct {
	Player      model.PlayerSnapshot
	Room        model.RoomSnapshot
	Game        *model.GameSnapshot
	Reconnected bool
}

// JoinRoom resolves or creates the player for the given name and binds the
// connection. A case-insensitive name match against an existing member is
// treated as a reconnection rather than a duplicate join.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, playerName string, conn model.ConnectionID, isGuest bool) (*JoinResult, error) {
	playerName = strings.TrimSpace(playerName)
	if roomID == "" {
		return nil, model.ErrRoomIDRequired
	}
	if playerName == "" {
		return nil, model.ErrNameRequired
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	// The connection is already a member; nothing to do
	if existing := room.GetPlayerByConnection(conn); existing != nil {
		return c.joinResult(room, existing, false), nil
	}

	now := c.clock.Now()

	// Name matches an existing member: reconnection path. Note this lets
	// anyone resume an identity by reusing its display name.
	if existing := room.GetPlayerByName(playerName); existing != nil {
		oldConn := existing.ConnectionID
		if oldConn != "" {
			c.registry.UnbindConnection(oldConn)
		}
		room.ReconnectPlayer(existing.ID, conn, now)
		c.registry.Bind(conn, existing.ID, room.ID)

		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}

		c.logger.Info("player reconnected",
			slog.String("room_id", string(room.ID)),
			slog.String("player", existing.Name),
			slog.String("old_conn", string(oldConn)),
			slog.String("new_conn", string(conn)),
		)

		return c.joinResult(room, existing, true), nil
	}

	// First joiner matching the room's recorded host name becomes host
	isHost := strings.EqualFold(playerName, room.HostName) && len(room.Players) == 0

	player := &model.Player{
		ID:           model.PlayerID(c.ident.NewID()),
		Name:         playerName,
		ConnectionID: conn,
		IsHost:       isHost,
		IsGuest:      isGuest,
		IsConnected:  true,
		JoinedAt:     now,
	}

	if err := room.AddPlayer(player, now); err != nil {
		return nil, err
	}
	c.registry.Bind(conn, player.ID, room.ID)

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("room_id", string(room.ID)),
		slog.String("player", player.Name),
		slog.Bool("is_host", isHost),
	)

	return c.joinResult(room, player, false), nil
}

func (c *Controller) joinResult(room *model.Room, player *model.Player, reconnected bool) *JoinResult {
	result := &JoinResult{
		Player:      player.Snapshot(),
		Room:        room.Snapshot(),
		Reconnected: reconnected,
	}
	if room.Game != nil {
		g := room.Game.Snapshot()
		result.Game = &g
	}
	return result
}

// LeaveResult carries the outcome of an explicit leave
type LeaveResult struct {
	Player      model.PlayerSnapshot
	RoomID      model.RoomID
	Room        model.RoomSnapshot
	RoomDeleted bool
}

// LeaveRoom removes the connection's player from their room. The room is
// deleted when it becomes empty, cascading registry cleanup.
func (c *Controller) LeaveRoom(ctx context.Context, conn model.ConnectionID) (*LeaveResult, error) {
	playerID, roomID, err := c.Resolve(conn)
	if err != nil {
		return nil, err
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	removed := room.RemovePlayer(playerID, c.clock.Now())
	if removed == nil {
		return nil, model.ErrPlayerNotFound
	}
	c.registry.UnbindPlayer(conn, playerID)

	if room.IsEmpty() {
		if err := c.deleteRoom(ctx, room); err != nil {
			return nil, err
		}
		return &LeaveResult{
			Player:      removed.Snapshot(),
			RoomID:      roomID,
			RoomDeleted: true,
		}, nil
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("player left",
		slog.String("room_id", string(roomID)),
		slog.String("player", removed.Name),
	)

	return &LeaveResult{
		Player: removed.Snapshot(),
		RoomID: roomID,
		Room:   room.Snapshot(),
	}, nil
}

// DisconnectResult carries the outcome of a transport-driven disconnect
type DisconnectResult struct {
	Player model.PlayerSnapshot
	RoomID model.RoomID
	Room   model.RoomSnapshot
}

// DisconnectPlayer marks the connection's player as disconnected while
// retaining membership. Only the connection mapping is dropped; the
// player-to-room mapping survives so a later join under the same name
// reconnects.
func (c *Controller) DisconnectPlayer(ctx context.Context, conn model.ConnectionID) (*DisconnectResult, error) {
	playerID, roomID, err := c.Resolve(conn)
	if err != nil {
		return nil, err
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	player := room.DisconnectPlayer(playerID, c.clock.Now())
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	c.registry.UnbindConnection(conn)

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("player disconnected",
		slog.String("room_id", string(roomID)),
		slog.String("player", player.Name),
	)

	return &DisconnectResult{
		Player: player.Snapshot(),
		RoomID: roomID,
		Room:   room.Snapshot(),
	}, nil
}

// SendMessage appends a player chat entry, rejecting empty text
func (c *Controller) SendMessage(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, text string) (model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return model.ChatMessage{}, model.ErrEmptyMessage
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return model.ChatMessage{}, err
	}

	msg, err := room.AddMessage(playerID, text, c.clock.Now())
	if err != nil {
		return model.ChatMessage{}, err
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return model.ChatMessage{}, err
	}

	return *msg, nil
}

// CleanupResult describes one room affected by a cleanup pass
type CleanupResult struct {
	RoomID      model.RoomID
	Evicted     []model.PlayerSnapshot
	Room        model.RoomSnapshot
	RoomDeleted bool
}

// Cleanup evicts players that have been disconnected for longer than the
// timeout, following the same path as an explicit leave, and deletes rooms
// that become empty.
func (c *Controller) Cleanup(ctx context.Context, timeout time.Duration) ([]CleanupResult, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	var results []CleanupResult

	for _, room := range rooms {
		var stale []model.PlayerID
		for _, p := range room.Players {
			if !p.IsConnected && !p.DisconnectedAt.IsZero() && now.Sub(p.DisconnectedAt) > timeout {
				stale = append(stale, p.ID)
			}
		}
		if len(stale) == 0 {
			continue
		}

		result := CleanupResult{RoomID: room.ID}
		for _, id := range stale {
			if removed := room.RemovePlayer(id, now); removed != nil {
				c.registry.UnbindPlayer(removed.ConnectionID, id)
				result.Evicted = append(result.Evicted, removed.Snapshot())
				c.logger.Info("cleaned up disconnected player",
					slog.String("room_id", string(room.ID)),
					slog.String("player", removed.Name),
				)
			}
		}

		if room.IsEmpty() {
			if err := c.deleteRoom(ctx, room); err != nil {
				return nil, err
			}
			result.RoomDeleted = true
		} else {
			if err := c.storage.SaveRoom(ctx, room); err != nil {
				return nil, err
			}
			result.Room = room.Snapshot()
		}

		results = append(results, result)
	}

	return results, nil
}

// deleteRoom removes a room and clears registry state for any remaining
// members
func (c *Controller) deleteRoom(ctx context.Context, room *model.Room) error {
	for _, p := range room.Players {
		c.registry.UnbindPlayer(p.ConnectionID, p.ID)
	}
	if err := c.storage.DeleteRoom(ctx, room.ID); err != nil {
		return err
	}
	c.logger.Info("room deleted", slog.String("room_id", string(room.ID)))
	return nil
}
