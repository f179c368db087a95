package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RoomSuite struct {
	suite.Suite
	now  time.Time
	room *Room
}

func TestRoomSuite(t *testing.T) {
	suite.Run(t, new(RoomSuite))
}

func (s *RoomSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.room = NewRoom("ABC123", "Alice", true, s.now)
}

func (s *RoomSuite) newPlayer(id, name string, isHost bool) *Player {
	return &Player{
		ID:           PlayerID(id),
		Name:         name,
		ConnectionID: ConnectionID("conn-" + id),
		IsHost:       isHost,
		IsGuest:      true,
		IsConnected:  true,
		JoinedAt:     s.now,
	}
}

// AddPlayer tests

func (s *RoomSuite) TestAddPlayerSucceeds() {
	p := s.newPlayer("p1", "Alice", true)

	err := s.room.AddPlayer(p, s.now)
	s.Require().NoError(err)

	s.Len(s.room.Players, 1)
	s.Equal(p, s.room.GetPlayer("p1"))
}

func (s *RoomSuite) TestAddPlayerAppendsSystemMessage() {
	p := s.newPlayer("p1", "Alice", true)

	err := s.room.AddPlayer(p, s.now)
	s.Require().NoError(err)

	s.Require().Len(s.room.Messages, 1)
	s.Equal("Alice joined the room", s.room.Messages[0].Text)
	s.Equal(MessageSystem, s.room.Messages[0].Kind)
}

func (s *RoomSuite) TestAddPlayerFailsWhenFull() {
	for i := 0; i < DefaultMaxPlayers; i++ {
		id := fmt.Sprintf("p%d", i)
		err := s.room.AddPlayer(s.newPlayer(id, "Player"+id, i == 0), s.now)
		s.Require().NoError(err)
	}

	err := s.room.AddPlayer(s.newPlayer("extra", "Extra", false), s.now)
	s.ErrorIs(err, ErrRoomFull)
	s.Len(s.room.Players, DefaultMaxPlayers)
}

func (s *RoomSuite) TestAddPlayerFailsWhileGameInProgress() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p2", "Bob", false), s.now))
	s.Require().NoError(s.room.StartGame(s.now))

	err := s.room.AddPlayer(s.newPlayer("p3", "Carol", false), s.now)
	s.ErrorIs(err, ErrGameInProgress)
}

// Player lookup tests

func (s *RoomSuite) TestGetPlayerByNameIsCaseInsensitive() {
	p := s.newPlayer("p1", "Alice", true)
	s.Require().NoError(s.room.AddPlayer(p, s.now))

	s.Equal(p, s.room.GetPlayerByName("ALICE"))
	s.Equal(p, s.room.GetPlayerByName("alice"))
	s.Nil(s.room.GetPlayerByName("Bob"))
}

func (s *RoomSuite) TestGetPlayerByConnectionIgnoresEmpty() {
	p := s.newPlayer("p1", "Alice", true)
	p.ConnectionID = ""
	s.Require().NoError(s.room.AddPlayer(p, s.now))

	s.Nil(s.room.GetPlayerByConnection(""))
}

// RemovePlayer tests

func (s *RoomSuite) TestRemovePlayerPromotesEarliestJoiner() {
	host := s.newPlayer("p1", "Alice", true)
	second := s.newPlayer("p2", "Bob", false)
	third := s.newPlayer("p3", "Carol", false)
	s.Require().NoError(s.room.AddPlayer(host, s.now))
	s.Require().NoError(s.room.AddPlayer(second, s.now))
	s.Require().NoError(s.room.AddPlayer(third, s.now))

	removed := s.room.RemovePlayer("p1", s.now)
	s.Require().NotNil(removed)
	s.Equal(host, removed)

	s.True(second.IsHost)
	s.False(third.IsHost)
	s.Equal("Bob", s.room.HostName)
	s.Equal(second, s.room.GetHost())
}

func (s *RoomSuite) TestRemovePlayerAnnouncesPromotion() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p2", "Bob", false), s.now))

	s.room.RemovePlayer("p1", s.now)

	last := s.room.Messages[len(s.room.Messages)-1]
	s.Equal("Bob is now the host", last.Text)
}

func (s *RoomSuite) TestRemovePlayerNonHostKeepsHost() {
	host := s.newPlayer("p1", "Alice", true)
	s.Require().NoError(s.room.AddPlayer(host, s.now))
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p2", "Bob", false), s.now))

	s.room.RemovePlayer("p2", s.now)

	s.True(host.IsHost)
	s.Equal("Alice", s.room.HostName)
}

func (s *RoomSuite) TestRemovePlayerUnknownReturnsNil() {
	s.Nil(s.room.RemovePlayer("ghost", s.now))
}

func (s *RoomSuite) TestRemoveLastPlayerLeavesRoomEmpty() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))

	s.room.RemovePlayer("p1", s.now)
	s.True(s.room.IsEmpty())
}

// Disconnect / reconnect tests

func (s *RoomSuite) TestDisconnectRetainsMembership() {
	p := s.newPlayer("p1", "Alice", true)
	s.Require().NoError(s.room.AddPlayer(p, s.now))

	got := s.room.DisconnectPlayer("p1", s.now)
	s.Require().NotNil(got)

	s.False(p.IsConnected)
	s.Equal(ConnectionID(""), p.ConnectionID)
	s.Equal(s.now, p.DisconnectedAt)
	s.Len(s.room.Players, 1)
}

func (s *RoomSuite) TestReconnectRestoresConnectivity() {
	p := s.newPlayer("p1", "Alice", true)
	s.Require().NoError(s.room.AddPlayer(p, s.now))
	s.room.DisconnectPlayer("p1", s.now)

	got := s.room.ReconnectPlayer("p1", "conn-new", s.now)
	s.Require().NotNil(got)

	s.True(p.IsConnected)
	s.Equal(ConnectionID("conn-new"), p.ConnectionID)
	s.True(p.DisconnectedAt.IsZero())
}

// Lifecycle tests

func (s *RoomSuite) TestCanStartGameRequiresTwoActivePlayers() {
	s.False(s.room.CanStartGame())

	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))
	s.False(s.room.CanStartGame())

	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p2", "Bob", false), s.now))
	s.True(s.room.CanStartGame())

	s.room.DisconnectPlayer("p2", s.now)
	s.False(s.room.CanStartGame())
}

func (s *RoomSuite) TestStartGameFailsOutsideLobby() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p2", "Bob", false), s.now))
	s.Require().NoError(s.room.StartGame(s.now))

	s.Equal(RoomStatusPlaying, s.room.Status)
	s.ErrorIs(s.room.StartGame(s.now), ErrCannotStart)
}

func (s *RoomSuite) TestResetGameClearsEliminationsAndGame() {
	p1 := s.newPlayer("p1", "Alice", true)
	p2 := s.newPlayer("p2", "Bob", false)
	s.Require().NoError(s.room.AddPlayer(p1, s.now))
	s.Require().NoError(s.room.AddPlayer(p2, s.now))
	s.Require().NoError(s.room.StartGame(s.now))
	s.room.Game = &Game{RoomID: s.room.ID}
	p2.Eliminate()
	s.room.FinishGame()

	s.room.ResetGame(s.now)

	s.Equal(RoomStatusLobby, s.room.Status)
	s.Nil(s.room.Game)
	s.False(p2.IsEliminated)
	s.True(s.room.CanStartGame())
}

// Chat tests

func (s *RoomSuite) TestAddMessageRequiresMembership() {
	_, err := s.room.AddMessage("ghost", "hello", s.now)
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *RoomSuite) TestAddMessageTrimsAndAttributes() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))

	msg, err := s.room.AddMessage("p1", "  hello  ", s.now)
	s.Require().NoError(err)

	s.Equal("hello", msg.Text)
	s.Equal("Alice", msg.PlayerName)
	s.Equal(MessagePlayer, msg.Kind)
}

func (s *RoomSuite) TestMessageIDsAreUniqueAndIncreasing() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))

	first, err := s.room.AddMessage("p1", "one", s.now)
	s.Require().NoError(err)
	second, err := s.room.AddMessage("p1", "two", s.now)
	s.Require().NoError(err)

	s.Greater(second.ID, first.ID)
}

func (s *RoomSuite) TestChatLogCapsAtMaxStoredMessages() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))

	for i := 0; i < MaxStoredMessages+20; i++ {
		_, err := s.room.AddMessage("p1", fmt.Sprintf("msg %d", i), s.now)
		s.Require().NoError(err)
	}

	s.Len(s.room.Messages, MaxStoredMessages)
	// Oldest entries were evicted
	s.Equal("msg 19", s.room.Messages[0].Text)
}

func (s *RoomSuite) TestMessageIDsSurviveEviction() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))

	var lastID int64
	for i := 0; i < MaxStoredMessages+10; i++ {
		msg, err := s.room.AddMessage("p1", "x", s.now)
		s.Require().NoError(err)
		s.Greater(msg.ID, lastID)
		lastID = msg.ID
	}
}

// Snapshot tests

func (s *RoomSuite) TestSnapshotCapsMessages() {
	s.Require().NoError(s.room.AddPlayer(s.newPlayer("p1", "Alice", true), s.now))

	for i := 0; i < MaxStoredMessages; i++ {
		_, err := s.room.AddMessage("p1", fmt.Sprintf("msg %d", i), s.now)
		s.Require().NoError(err)
	}

	snap := s.room.Snapshot()
	s.Len(snap.Messages, MaxSnapshotMessages)
	s.Equal(fmt.Sprintf("msg %d", MaxStoredMessages-MaxSnapshotMessages), snap.Messages[0].Text)
}

func (s *RoomSuite) TestSnapshotIsDetachedFromRoom() {
	p := s.newPlayer("p1", "Alice", true)
	s.Require().NoError(s.room.AddPlayer(p, s.now))

	snap := s.room.Snapshot()
	snap.Players[0].Name = "Mallory"

	s.Equal("Alice", p.Name)
}

func (s *RoomSuite) TestSnapshotCanJoinReflectsCapacityAndStatus() {
	s.True(s.room.Snapshot().CanJoin)

	for i := 0; i < DefaultMaxPlayers; i++ {
		id := fmt.Sprintf("p%d", i)
		s.Require().NoError(s.room.AddPlayer(s.newPlayer(id, "Player"+id, i == 0), s.now))
	}
	s.False(s.room.Snapshot().CanJoin)
}
