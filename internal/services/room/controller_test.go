package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/mocks"
	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/storage/memory"
	"github.com/deathroll-xyz/deathroll-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	ident      *mocks.MockIdent
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ident = mocks.NewMockIdent("player")
	s.controller = NewController(s.storage, s.clock, s.random, s.ident, testutil.NopLogger())
	s.ctx = context.Background()
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoomSucceeds() {
	s.random.QueueString("ABC123")

	snap, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)

	s.Equal(model.RoomID("ABC123"), snap.ID)
	s.Equal("Alice", snap.HostName)
	s.Equal(model.RoomStatusLobby, snap.Status)
	s.Equal(0, snap.PlayerCount)
	s.True(snap.CanJoin)
}

func (s *ControllerSuite) TestCreateRoomRequiresHostName() {
	_, err := s.controller.CreateRoom(s.ctx, "   ", true)
	s.ErrorIs(err, model.ErrHostNameRequired)
}

func (s *ControllerSuite) TestCreateRoomRegeneratesOnCollision() {
	s.random.QueueString("ABC123", "ABC123", "XYZ789")

	first, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	s.Equal(model.RoomID("ABC123"), first.ID)

	second, err := s.controller.CreateRoom(s.ctx, "Bob", true)
	s.Require().NoError(err)
	s.Equal(model.RoomID("XYZ789"), second.ID)
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoomFirstJoinerMatchingHostNameBecomesHost() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)

	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "alice", "conn-1", true)
	s.Require().NoError(err)

	s.True(res.Player.IsHost)
	s.False(res.Reconnected)
	s.Equal(1, res.Room.PlayerCount)
}

func (s *ControllerSuite) TestJoinRoomSecondJoinerIsNotHost() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)
	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-2", true)
	s.Require().NoError(err)

	s.False(res.Player.IsHost)
	s.Equal(2, res.Room.PlayerCount)
}

func (s *ControllerSuite) TestJoinRoomNotFound() {
	_, err := s.controller.JoinRoom(s.ctx, "MISSING", "Alice", "conn-1", true)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinRoomValidatesInput() {
	_, err := s.controller.JoinRoom(s.ctx, "", "Alice", "conn-1", true)
	s.ErrorIs(err, model.ErrRoomIDRequired)

	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "  ", "conn-1", true)
	s.ErrorIs(err, model.ErrNameRequired)
}

func (s *ControllerSuite) TestJoinRoomSameConnectionIsIdempotent() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)

	first, err := s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)
	again, err := s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	s.Equal(first.Player.ID, again.Player.ID)
	s.Equal(1, again.Room.PlayerCount)
}

func (s *ControllerSuite) TestJoinRoomByNameReconnects() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)

	first, err := s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	_, err = s.controller.DisconnectPlayer(s.ctx, "conn-1")
	s.Require().NoError(err)

	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "ALICE", "conn-2", true)
	s.Require().NoError(err)

	s.True(res.Reconnected)
	s.Equal(first.Player.ID, res.Player.ID)
	s.True(res.Player.IsConnected)
	s.Equal(1, res.Room.PlayerCount)

	// The new connection resolves to the same player
	playerID, roomID, err := s.controller.Resolve("conn-2")
	s.Require().NoError(err)
	s.Equal(first.Player.ID, playerID)
	s.Equal(model.RoomID("ABC123"), roomID)
}

func (s *ControllerSuite) TestJoinRoomNameTakeoverUnbindsOldConnection() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)

	first, err := s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	// Same name from a different connection while conn-1 is still live
	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-2", true)
	s.Require().NoError(err)

	s.True(res.Reconnected)
	s.Equal(first.Player.ID, res.Player.ID)

	_, _, err = s.controller.Resolve("conn-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	playerID, _, err := s.controller.Resolve("conn-2")
	s.Require().NoError(err)
	s.Equal(first.Player.ID, playerID)
}

func (s *ControllerSuite) TestJoinRoomReconnectDuringGame() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-2", true)
	s.Require().NoError(err)

	room, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Require().NoError(room.StartGame(s.clock.Now()))
	room.Game = &model.Game{RoomID: room.ID, Players: room.Players, Status: model.GameStatusActive}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	_, err = s.controller.DisconnectPlayer(s.ctx, "conn-2")
	s.Require().NoError(err)

	// Reconnect by name works mid-game and includes the game snapshot
	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-3", true)
	s.Require().NoError(err)
	s.True(res.Reconnected)
	s.Require().NotNil(res.Game)
	s.Equal(model.GameStatusActive, res.Game.Status)

	// A brand-new name is still rejected mid-game
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Carol", "conn-4", true)
	s.ErrorIs(err, model.ErrGameInProgress)
}

// LeaveRoom tests

func (s *ControllerSuite) TestLeaveRoomRemovesPlayer() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-2", true)
	s.Require().NoError(err)

	res, err := s.controller.LeaveRoom(s.ctx, "conn-2")
	s.Require().NoError(err)

	s.False(res.RoomDeleted)
	s.Equal("Bob", res.Player.Name)
	s.Equal(1, res.Room.PlayerCount)

	_, _, err = s.controller.Resolve("conn-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestLeaveRoomLastPlayerDeletesRoom() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	res, err := s.controller.LeaveRoom(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.True(res.RoomDeleted)

	_, err = s.storage.GetRoom(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestLeaveRoomUnknownConnection() {
	_, err := s.controller.LeaveRoom(s.ctx, "conn-ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Disconnect tests

func (s *ControllerSuite) TestDisconnectKeepsMembership() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	res, err := s.controller.DisconnectPlayer(s.ctx, "conn-1")
	s.Require().NoError(err)

	s.False(res.Player.IsConnected)
	s.Equal(1, res.Room.PlayerCount)

	// Connection mapping dropped, membership retained
	_, _, err = s.controller.Resolve("conn-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	room, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Len(room.Players, 1)
}

// SendMessage tests

func (s *ControllerSuite) TestSendMessageSucceeds() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	msg, err := s.controller.SendMessage(s.ctx, "ABC123", res.Player.ID, "gl hf")
	s.Require().NoError(err)

	s.Equal("gl hf", msg.Text)
	s.Equal("Alice", msg.PlayerName)
	s.Equal(model.MessagePlayer, msg.Kind)
}

func (s *ControllerSuite) TestSendMessageRejectsEmpty() {
	_, err := s.controller.SendMessage(s.ctx, "ABC123", "player-1", "   ")
	s.ErrorIs(err, model.ErrEmptyMessage)
}

// Cleanup tests

func (s *ControllerSuite) TestCleanupEvictsOnlyStalePlayers() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-2", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Carol", "conn-3", true)
	s.Require().NoError(err)

	// Bob disconnects long ago, Carol just now
	_, err = s.controller.DisconnectPlayer(s.ctx, "conn-2")
	s.Require().NoError(err)
	s.clock.Advance(6 * time.Minute)
	_, err = s.controller.DisconnectPlayer(s.ctx, "conn-3")
	s.Require().NoError(err)

	results, err := s.controller.Cleanup(s.ctx, 5*time.Minute)
	s.Require().NoError(err)

	s.Require().Len(results, 1)
	s.Require().Len(results[0].Evicted, 1)
	s.Equal("Bob", results[0].Evicted[0].Name)
	s.False(results[0].RoomDeleted)
	s.Equal(2, results[0].Room.PlayerCount)
}

func (s *ControllerSuite) TestCleanupIgnoresConnectedPlayers() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)

	results, err := s.controller.Cleanup(s.ctx, 5*time.Minute)
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *ControllerSuite) TestCleanupDeletesEmptiedRoom() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)

	_, err = s.controller.DisconnectPlayer(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.clock.Advance(10 * time.Minute)

	results, err := s.controller.Cleanup(s.ctx, 5*time.Minute)
	s.Require().NoError(err)

	s.Require().Len(results, 1)
	s.True(results[0].RoomDeleted)

	_, err = s.storage.GetRoom(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestCleanupAllowsRejoinAfterEviction() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRoom(s.ctx, "Alice", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Alice", "conn-1", true)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-2", true)
	s.Require().NoError(err)

	_, err = s.controller.DisconnectPlayer(s.ctx, "conn-2")
	s.Require().NoError(err)
	s.clock.Advance(10 * time.Minute)
	_, err = s.controller.Cleanup(s.ctx, 5*time.Minute)
	s.Require().NoError(err)

	// Bob was evicted; joining again creates a fresh player
	res, err := s.controller.JoinRoom(s.ctx, "ABC123", "Bob", "conn-3", true)
	s.Require().NoError(err)
	s.False(res.Reconnected)
	s.Equal(2, res.Room.PlayerCount)
}
