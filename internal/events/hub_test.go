package events

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHub(logger)
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHubBroadcastAndSend(t *testing.T) {
	h := newTestHub()
	a := h.Register("a", 4)
	b := h.Register("b", 4)

	h.Broadcast("room-1", []string{"a", "b", "offline"}, Event{Type: PlayerLeft, Payload: PlayerLeftPayload{PlayerID: "c"}})
	h.Send("b", NewError(errors.New("not your turn")))

	msg := decode(t, <-a)
	assert.Equal(t, "player-left", msg["type"])
	assert.Equal(t, map[string]any{"playerId": "c"}, msg["payload"])

	assert.Equal(t, "player-left", decode(t, <-b)["type"])
	errMsg := decode(t, <-b)
	assert.Equal(t, "error", errMsg["type"])
	assert.Equal(t, map[string]any{"message": "not your turn"}, errMsg["payload"])

	assert.Empty(t, a)
}

func TestHubDropsWhenFull(t *testing.T) {
	h := newTestHub()
	ch := h.Register("a", 1)

	h.Send("a", Event{Type: RoomUpdated})
	h.Send("a", Event{Type: GameUpdated})

	assert.Len(t, ch, 1)
	assert.Equal(t, "room-updated", decode(t, <-ch)["type"])
}

func TestHubUnregister(t *testing.T) {
	h := newTestHub()
	ch := h.Register("a", 1)
	require.True(t, h.Connected("a"))

	h.Unregister("a")
	_, open := <-ch
	assert.False(t, open)
	assert.False(t, h.Connected("a"))

	h.Send("a", Event{Type: RoomUpdated})
	h.Unregister("a")
}

func TestHubReRegisterClosesOld(t *testing.T) {
	h := newTestHub()
	old := h.Register("a", 1)
	fresh := h.Register("a", 1)

	_, open := <-old
	assert.False(t, open)

	h.Send("a", Event{Type: RoomUpdated})
	assert.Len(t, fresh, 1)
}

func TestMultiAndRecorder(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	m := Multi{first, second}

	m.Broadcast("room-1", []string{"a", "b"}, Event{Type: GameStarted})
	m.Send("a", Event{Type: TaxRequest})

	for _, r := range []*Recorder{first, second} {
		assert.Equal(t, []Event{{Type: GameStarted}, {Type: TaxRequest}}, r.For("a"))
		assert.Equal(t, 1, r.Count("b", GameStarted))
		last, ok := r.LastOf("a", GameStarted)
		assert.True(t, ok)
		assert.Equal(t, GameStarted, last.Type)
	}

	first.Clear()
	assert.Empty(t, first.For("a"))
}

func TestEncodeFailure(t *testing.T) {
	_, err := Encode(Event{Type: GameUpdated, Payload: make(chan int)})
	assert.Error(t, err)
}
