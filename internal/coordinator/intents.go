// internal/coordinator/intents.go
package coordinator

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/models"
)

// Handle applies one client intent on behalf of playerID. A failure is
// reported to playerID alone as an error event and also returned.
func (c *Coordinator) Handle(playerID string, in models.Intent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("player", playerID).Errorf("panic handling %s: %v", in.Type, r)
			err = fmt.Errorf("internal error handling %s", in.Type)
		}
		if err != nil {
			c.pub.Send(playerID, events.NewError(err))
		}
	}()

	switch in.Type {
	case models.IntentCreateRoom:
		var p models.CreateRoomPayload
		if err = decode(in, &p); err == nil {
			_, err = c.CreateRoom(playerID, p.Name, p.PlayerName)
		}
	case models.IntentJoinRoom:
		var p models.JoinRoomPayload
		if err = decode(in, &p); err == nil {
			_, err = c.JoinRoom(playerID, p.RoomID, p.PlayerName)
		}
	case models.IntentLeaveRoom:
		err = c.LeaveRoom(playerID)
	case models.IntentAddAI:
		var p models.AddAIPayload
		if err = decodeOptional(in, &p); err == nil {
			err = c.AddAI(playerID, p.Difficulty)
		}
	case models.IntentSetReady:
		var p models.SetReadyPayload
		if err = decodeOptional(in, &p); err == nil {
			ready := p.Ready == nil || *p.Ready
			err = c.SetReady(playerID, ready)
		}
	case models.IntentStartGame:
		err = c.StartGame(playerID)
	case models.IntentRestartGame:
		err = c.RestartGame(playerID)
	case models.IntentPlayCards:
		var p models.CardsPayload
		if err = decode(in, &p); err == nil {
			err = c.PlayCards(playerID, p.Cards)
		}
	case models.IntentPass:
		err = c.Pass(playerID)
	case models.IntentSubmitTax:
		var p models.CardsPayload
		if err = decode(in, &p); err == nil {
			err = c.SubmitTax(playerID, p.Cards)
		}
	case models.IntentUpdateOptions:
		var opts models.GameOptions
		if err = decode(in, &opts); err == nil {
			err = c.UpdateOptions(playerID, opts)
		}
	default:
		err = fmt.Errorf("%w: unknown intent %q", game.ErrInvalidState, in.Type)
	}
	return err
}

func decode(in models.Intent, v any) error {
	if len(in.Payload) == 0 {
		return fmt.Errorf("%w: %s needs a payload", game.ErrInvalidState, in.Type)
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return fmt.Errorf("%w: malformed %s payload: %v", game.ErrInvalidState, in.Type, err)
	}
	return nil
}

func decodeOptional(in models.Intent, v any) error {
	if len(in.Payload) == 0 || string(in.Payload) == "null" {
		return nil
	}
	return decode(in, v)
}
