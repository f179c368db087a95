// Package factory wires the application graph: storage, dependencies,
// controllers, the session coordinator, and the WebSocket hub.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/clock"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/ident"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/random"
	"github.com/deathroll-xyz/deathroll-go/internal/services/game"
	"github.com/deathroll-xyz/deathroll-go/internal/services/room"
	"github.com/deathroll-xyz/deathroll-go/internal/session"
	"github.com/deathroll-xyz/deathroll-go/internal/storage"
	"github.com/deathroll-xyz/deathroll-go/internal/storage/memory"
	redisstorage "github.com/deathroll-xyz/deathroll-go/internal/storage/redis"
	"github.com/deathroll-xyz/deathroll-go/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Ident  ident.Generator

	// Services
	RoomController *room.Controller
	GameController *game.Controller
	Coordinator    *session.Coordinator
	Hub            *ws.Hub
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Session holds coordinator timings (optional)
	// If zero value, defaults to session.DefaultConfig()
	Session session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	sessionCfg := cfg.Session
	if sessionCfg.CleanupInterval == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), ident.New(), sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	idg ident.Generator,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	roomController := room.NewController(store, clk, rnd, idg, logger)
	gameController := game.NewController(store, clk, rnd, idg, logger)

	// The hub and coordinator reference each other: the coordinator sends
	// through the hub, the hub delivers inbound events to the coordinator
	hub := ws.NewHub(idg, logger)
	coordinator := session.NewCoordinator(roomController, gameController, hub, sessionCfg, logger)
	hub.SetHandler(coordinator)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Ident:          idg,
		RoomController: roomController,
		GameController: gameController,
		Coordinator:    coordinator,
		Hub:            hub,
	}
}
