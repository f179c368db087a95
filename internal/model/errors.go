package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("game is already in progress")
	ErrCannotStart    = errors.New("cannot start game")
	ErrNoActiveGame   = errors.New("no active game found")
	ErrNotHost        = errors.New("only the host can perform this action")

	// Player errors
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerEliminated = errors.New("player is eliminated")

	// Game errors
	ErrGameNotActive = errors.New("game is not active")
	ErrNotYourTurn   = errors.New("not your turn")

	// Validation errors
	ErrNameRequired        = errors.New("player name is required")
	ErrRoomIDRequired      = errors.New("room ID is required")
	ErrHostNameRequired    = errors.New("host name is required")
	ErrEmptyMessage        = errors.New("message cannot be empty")
	ErrInvalidStartingRoll = errors.New("starting roll must be a positive integer")
)
