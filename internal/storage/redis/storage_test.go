package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	_ = s.storage.Close()
	s.mini.Close()
}

func (s *StorageSuite) newRoom(id model.RoomID, names ...string) *model.Room {
	room := model.NewRoom(id, "Alice", true, s.now)
	for i, name := range names {
		p := &model.Player{
			ID:          model.PlayerID("player-" + name),
			Name:        name,
			IsHost:      i == 0,
			IsGuest:     true,
			IsConnected: true,
			JoinedAt:    s.now,
		}
		s.Require().NoError(room.AddPlayer(p, s.now))
	}
	return room
}

func (s *StorageSuite) TestSaveAndGetRoomRoundTrip() {
	room := s.newRoom("ABC123", "Alice", "Bob")
	_, err := room.AddMessage("player-Alice", "hello", s.now)
	s.Require().NoError(err)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)

	s.Equal(room.ID, retrieved.ID)
	s.Equal("Alice", retrieved.HostName)
	s.Len(retrieved.Players, 2)
	s.Equal(room.MessageSeq, retrieved.MessageSeq)
	last := retrieved.Messages[len(retrieved.Messages)-1]
	s.Equal("hello", last.Text)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "MISSING")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC123")))

	exists, err = s.storage.RoomExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestDeleteRoomRemovesIndexEntry() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC123")))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC123"))

	_, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestListRooms() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("AAAAAA")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("BBBBBB")))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 2)
}

func (s *StorageSuite) TestListRoomsDropsExpiredEntries() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("AAAAAA")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("BBBBBB")))

	// Expire one room's value while its index entry remains
	s.mini.FastForward(2 * time.Hour)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("BBBBBB")))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomID("BBBBBB"), rooms[0].ID)
}

func (s *StorageSuite) TestGameStateRoundTrip() {
	room := s.newRoom("ABC123", "Alice", "Bob")
	s.Require().NoError(room.StartGame(s.now))
	room.Game = &model.Game{
		RoomID:       room.ID,
		Players:      []*model.Player{room.Players[0], room.Players[1]},
		Range:        model.RollRange{Min: 1, Max: 57},
		StartingRoll: 100,
		Rolls: []model.RollRecord{{
			ID:         "roll-1",
			PlayerID:   "player-Alice",
			PlayerName: "Alice",
			Result:     57,
			Range:      model.RollRange{Min: 1, Max: 100},
			Timestamp:  s.now,
		}},
		Status:    model.GameStatusActive,
		StartedAt: s.now,
	}

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved.Game)
	s.Equal(57, retrieved.Game.Range.Max)
	s.Equal(100, retrieved.Game.StartingRoll)
	s.Require().Len(retrieved.Game.Rolls, 1)
	s.Equal("roll-1", retrieved.Game.Rolls[0].ID)
}

func (s *StorageSuite) TestRehydrationRelinksGamePlayers() {
	room := s.newRoom("ABC123", "Alice", "Bob")
	s.Require().NoError(room.StartGame(s.now))
	room.Game = &model.Game{
		RoomID:  room.ID,
		Players: []*model.Player{room.Players[0], room.Players[1]},
		Status:  model.GameStatusActive,
	}

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)

	// Eliminating through the game must be visible through the room
	retrieved.Game.Players[1].Eliminate()
	s.True(retrieved.Players[1].IsEliminated)
}

func (s *StorageSuite) TestRehydrationRelinksWinner() {
	room := s.newRoom("ABC123", "Alice", "Bob")
	room.Players[1].Eliminate()
	room.FinishGame()
	room.Game = &model.Game{
		RoomID:  room.ID,
		Players: []*model.Player{room.Players[0], room.Players[1]},
		Status:  model.GameStatusFinished,
		Winner:  room.Players[0],
	}

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved.Game.Winner)
	s.Same(retrieved.Players[0], retrieved.Game.Winner)
}
