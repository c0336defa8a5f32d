// internal/events/events.go
package events

import (
	"encoding/json"
	"fmt"
)

// Type names an outbound event.
type Type string

const (
	RoomUpdated  Type = "room-updated"
	GameStarted  Type = "game-started"
	GameUpdated  Type = "game-updated"
	GameFinished Type = "game-finished"
	TaxRequest   Type = "tax-request"
	PlayerJoined Type = "player-joined"
	PlayerLeft   Type = "player-left"
	Error        Type = "error"

	// Connected is sent once per connection and carries the id the server
	// assigned to it.
	Connected Type = "connected"
)

// Event is one message to clients. Payload is marshalled as-is, so it must
// be a value the sender no longer mutates.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

// PlayerLeftPayload is the payload of PlayerLeft.
type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

// ConnectedPayload is the payload of Connected.
type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

// ErrorPayload is the payload of Error.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewError builds an Error event carrying err's message.
func NewError(err error) Event {
	return Event{Type: Error, Payload: ErrorPayload{Message: err.Error()}}
}

// Encode marshals ev into the wire format shared by every publisher.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", ev.Type, err)
	}
	return data, nil
}

// Publisher delivers events. Broadcast goes to every listed member of a
// room; Send goes to one player. Implementations must not block the caller
// on slow consumers and must keep per-recipient order.
type Publisher interface {
	Broadcast(roomID string, recipients []string, ev Event)
	Send(playerID string, ev Event)
}

// Multi fans every event out to several publishers, in order.
type Multi []Publisher

func (m Multi) Broadcast(roomID string, recipients []string, ev Event) {
	for _, p := range m {
		p.Broadcast(roomID, recipients, ev)
	}
}

func (m Multi) Send(playerID string, ev Event) {
	for _, p := range m {
		p.Send(playerID, ev)
	}
}
