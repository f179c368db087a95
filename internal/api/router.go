// Package api wires the HTTP surface: the REST endpoints, the WebSocket
// upgrade route, and the server lifecycle.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/deathroll-xyz/deathroll-go/internal/api/apierr"
	"github.com/deathroll-xyz/deathroll-go/internal/api/handler"
	"github.com/deathroll-xyz/deathroll-go/internal/api/response"
	"github.com/deathroll-xyz/deathroll-go/internal/dependencies/clock"
	"github.com/deathroll-xyz/deathroll-go/internal/middleware"
	"github.com/deathroll-xyz/deathroll-go/internal/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Clock       clock.Clock
	Coordinator *session.Coordinator
	// WebSocketHandler serves the upgrade route. Nil disables it, which
	// the REST-only tests use.
	WebSocketHandler http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Coordinator)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, panicHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{roomId}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler(cfg.Clock)).Methods(http.MethodGet)

	if cfg.WebSocketHandler != nil {
		// No logging middleware on the upgrade route; the connection
		// outlives the request
		r.Handle("/ws", cfg.WebSocketHandler).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(c clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if c != nil {
			now = c.Now()
		}
		response.JSON(w, http.StatusOK, response.HealthResponse{
			Status:    "ok",
			Timestamp: now,
		})
	}
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
