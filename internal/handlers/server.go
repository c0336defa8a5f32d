// internal/handlers/server.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/arl/statsviz"
	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/jason-s-yu/dalmuti/internal/lobby"
	"github.com/jason-s-yu/dalmuti/internal/middleware"
	"github.com/sirupsen/logrus"
)

// Server holds what the HTTP and websocket endpoints share.
type Server struct {
	Logger    *logrus.Logger
	Directory *lobby.Directory
	Hub       *events.Hub
	Intents   IntentHandler

	// AllowedOrigins are the websocket origin patterns accepted on /ws.
	AllowedOrigins []string
	// Debug mounts the statsviz dashboard under /debug/statsviz/.
	Debug bool
}

// Routes builds the server's mux, wrapped in request logging.
func (s *Server) Routes() (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", WSHandler(s.Logger, s.Hub, s.Intents, s.AllowedOrigins))
	mux.HandleFunc("GET /rooms", ListRoomsHandler(s.Logger, s.Directory))
	mux.HandleFunc("GET /rooms/{id}", GetRoomHandler(s.Logger, s.Directory))
	mux.HandleFunc("GET /healthz", HealthHandler(s.Logger))

	if s.Debug {
		if err := statsviz.Register(mux); err != nil {
			return nil, fmt.Errorf("failed to register statsviz: %w", err)
		}
		s.Logger.Info("runtime dashboard at /debug/statsviz/")
	}

	return middleware.LogMiddleware(s.Logger)(mux), nil
}
