package models

import "encoding/json"

// Intent types accepted from clients.
const (
	IntentCreateRoom    = "create-room"
	IntentJoinRoom      = "join-room"
	IntentLeaveRoom     = "leave-room"
	IntentAddAI         = "add-ai"
	IntentSetReady      = "set-ready"
	IntentStartGame     = "start-game"
	IntentRestartGame   = "restart-game"
	IntentPlayCards     = "play-cards"
	IntentPass          = "pass"
	IntentSubmitTax     = "submit-tax"
	IntentUpdateOptions = "update-options"
)

// Intent is a client message. Type names the intent (e.g. "play-cards") and
// Payload carries its arguments, decoded by the handler for that type.
type Intent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoomPayload is the payload of "create-room".
type CreateRoomPayload struct {
	Name       string `json:"name"`
	PlayerName string `json:"playerName"`
}

// JoinRoomPayload is the payload of "join-room".
type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// AddAIPayload is the optional payload of "add-ai".
type AddAIPayload struct {
	Difficulty string `json:"difficulty,omitempty"`
}

// CardsPayload is the payload of "play-cards" and "submit-tax".
type CardsPayload struct {
	Cards []Card `json:"cards"`
}

// SetReadyPayload is the optional payload of "set-ready". A missing Ready
// means ready.
type SetReadyPayload struct {
	Ready *bool `json:"ready,omitempty"`
}
