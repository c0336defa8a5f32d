// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/middleware"
	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "dalmuti"

const (
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
	writeTimeout = 5 * time.Second
)

// IntentHandler applies one client intent for a connection.
type IntentHandler interface {
	Handle(playerID string, in models.Intent) error
	Disconnect(playerID string)
}

// WSHandler upgrades to a websocket, gives the connection a fresh player id
// and relays intents to h until the client goes away. Leaving the
// connection counts as leaving the room.
func WSHandler(logger *logrus.Logger, hub *events.Hub, h IntentHandler, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: origins,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the dalmuti subprotocol")
			return
		}

		playerID := uuid.NewString()
		out := hub.Register(playerID, events.DefaultBuffer)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		hub.Send(playerID, events.Event{Type: events.Connected, Payload: events.ConnectedPayload{PlayerID: playerID}})

		ctx, cancel := context.WithCancel(r.Context())
		go writePump(ctx, c, out, logger.WithField("player", playerID))
		readErr := readPump(ctx, c, hub, h, logger.WithField("player", playerID), playerID)
		cancel()

		h.Disconnect(playerID)
		hub.Unregister(playerID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump decodes intents until the connection fails. It returns nil for a
// normal close.
func readPump(ctx context.Context, c *websocket.Conn, hub *events.Hub, h IntentHandler, log *logrus.Entry, playerID string) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			log.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		var in models.Intent
		if err := json.Unmarshal(msg, &in); err != nil || in.Type == "" {
			hub.Send(playerID, events.NewError(fmt.Errorf("%w: message is not an intent", game.ErrInvalidState)))
			continue
		}
		if err := h.Handle(playerID, in); err != nil {
			log.WithField("intent", in.Type).Debugf("intent rejected: %v", err)
		}
	}
}

// writePump forwards queued events to the client and keeps it alive with
// pings. It stops when out is closed or the connection fails.
func writePump(ctx context.Context, c *websocket.Conn, out <-chan []byte, log *logrus.Entry) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Warnf("failed to write to websocket: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				log.Warnf("ping failed, assuming disconnect: %v", err)
				return
			}
		}
	}
}
