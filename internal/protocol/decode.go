package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deathroll-xyz/deathroll-go/internal/model"
)

// Decode errors
var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Inbound is implemented by every decoded inbound event payload
type Inbound interface {
	isInbound()
}

// JoinRoom asks to join (or reconnect to) a room under a display name
type JoinRoom struct {
	RoomID     model.RoomID
	PlayerName string
	IsGuest    bool
}

// LeaveRoom asks to leave the current room
type LeaveRoom struct{}

// StartGame asks to begin a game. StartingRoll 0 means the default.
type StartGame struct {
	StartingRoll int
}

// RollDice asks to take the current turn
type RollDice struct{}

// SendMessage asks to append a chat message
type SendMessage struct {
	Message string
}

// ResetGame asks to return the room to the lobby
type ResetGame struct{}

// GetRoomInfo asks whether a room exists and can be joined
type GetRoomInfo struct {
	RoomID model.RoomID
}

// Ping is the heartbeat request
type Ping struct{}

func (JoinRoom) isInbound()    {}
func (LeaveRoom) isInbound()   {}
func (StartGame) isInbound()   {}
func (RollDice) isInbound()    {}
func (SendMessage) isInbound() {}
func (ResetGame) isInbound()   {}
func (GetRoomInfo) isInbound() {}
func (Ping) isInbound()        {}

// Wire shapes, matching the field names clients send
type joinRoomWire struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	IsGuest    *bool  `json:"isGuest"`
}

type startGameWire struct {
	StartingRoll int `json:"startingRoll"`
}

type sendMessageWire struct {
	Message string `json:"message"`
}

type getRoomInfoWire struct {
	RoomID string `json:"roomId"`
}

// DecodeInbound validates an envelope and returns its typed payload.
// Required-field validation happens here, before any dispatch.
func DecodeInbound(env Envelope) (Inbound, error) {
	switch env.Type {
	case EventJoinRoom:
		var w joinRoomWire
		if err := unmarshal(env, &w); err != nil {
			return nil, err
		}
		if strings.TrimSpace(w.RoomID) == "" {
			return nil, model.ErrRoomIDRequired
		}
		if strings.TrimSpace(w.PlayerName) == "" {
			return nil, model.ErrNameRequired
		}
		isGuest := true
		if w.IsGuest != nil {
			isGuest = *w.IsGuest
		}
		return JoinRoom{
			RoomID:     model.RoomID(strings.TrimSpace(w.RoomID)),
			PlayerName: strings.TrimSpace(w.PlayerName),
			IsGuest:    isGuest,
		}, nil

	case EventLeaveRoom:
		return LeaveRoom{}, nil

	case EventStartGame:
		var w startGameWire
		if err := unmarshal(env, &w); err != nil {
			return nil, err
		}
		if w.StartingRoll < 0 {
			return nil, model.ErrInvalidStartingRoll
		}
		return StartGame{StartingRoll: w.StartingRoll}, nil

	case EventRollDice:
		return RollDice{}, nil

	case EventSendMessage:
		var w sendMessageWire
		if err := unmarshal(env, &w); err != nil {
			return nil, err
		}
		if strings.TrimSpace(w.Message) == "" {
			return nil, model.ErrEmptyMessage
		}
		return SendMessage{Message: w.Message}, nil

	case EventResetGame:
		return ResetGame{}, nil

	case EventGetRoomInfo:
		var w getRoomInfoWire
		if err := unmarshal(env, &w); err != nil {
			return nil, err
		}
		if strings.TrimSpace(w.RoomID) == "" {
			return nil, model.ErrRoomIDRequired
		}
		return GetRoomInfo{RoomID: model.RoomID(strings.TrimSpace(w.RoomID))}, nil

	case EventPing:
		return Ping{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

func unmarshal(env Envelope, dst any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
