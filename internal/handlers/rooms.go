// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/lobby"
	"github.com/sirupsen/logrus"
)

// ListRoomsHandler returns every open room, hands hidden.
func ListRoomsHandler(logger *logrus.Logger, dir *lobby.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(logger, w, http.StatusOK, dir.ListRooms())
	}
}

// GetRoomHandler returns one room by the {id} path value.
func GetRoomHandler(logger *logrus.Logger, dir *lobby.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := dir.GetRoom(r.PathValue("id"))
		if errors.Is(err, game.ErrNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(logger, w, http.StatusOK, room.Public())
	}
}

// HealthHandler reports liveness.
func HealthHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(logger, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(logger *logrus.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("failed to encode response: %v", err)
	}
}
