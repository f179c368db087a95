// Package handler contains the HTTP handlers for the REST surface
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/deathroll-xyz/deathroll-go/internal/api/apierr"
	"github.com/deathroll-xyz/deathroll-go/internal/api/request"
	"github.com/deathroll-xyz/deathroll-go/internal/api/response"
	"github.com/deathroll-xyz/deathroll-go/internal/model"
	"github.com/deathroll-xyz/deathroll-go/internal/session"
)

// RoomHandler handles room-related endpoints. Lookups and creation route
// through the coordinator so they serialize with live event handling.
type RoomHandler struct {
	coordinator *session.Coordinator
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(coordinator *session.Coordinator) *RoomHandler {
	return &RoomHandler{coordinator: coordinator}
}

// Create handles POST /api/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	if strings.TrimSpace(req.HostName) == "" {
		apierr.WriteError(w, model.ErrHostNameRequired)
		return
	}

	isGuest := true
	if req.IsGuest != nil {
		isGuest = *req.IsGuest
	}

	room, err := h.coordinator.CreateRoom(r.Context(), req.HostName, isGuest)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, room)
}

// Get handles GET /api/rooms/{roomId}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["roomId"])

	room, err := h.coordinator.GetRoom(r.Context(), roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, room)
}
