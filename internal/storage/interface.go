package storage

import (
	"context"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
)

// Storage defines the interface for room state access. Rooms own their
// players and game exclusively, so they are the only persisted entity.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
}
