package handlers

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/dalmuti/internal/coordinator"
	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/jason-s-yu/dalmuti/internal/lobby"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireEvent struct {
	Type    events.Type     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wireRoom struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HostID  string `json:"hostId"`
	Players []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
}

func newTestServer(t *testing.T) (*httptest.Server, *lobby.Directory) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := lobby.NewDirectory(logger, rand.New(rand.NewSource(1)))
	hub := events.NewHub(logger)
	coord := coordinator.New(dir, hub, coordinator.Config{AIDelay: time.Millisecond, TurnUnit: time.Millisecond}, logger)
	t.Cleanup(coord.Close)

	s := &Server{
		Logger:         logger,
		Directory:      dir,
		Hub:            hub,
		Intents:        coord,
		AllowedOrigins: []string{"*"},
	}
	h, err := s.Routes()
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, dir
}

func dial(t *testing.T, srv *httptest.Server, subprotocols ...string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: subprotocols})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func send(t *testing.T, c *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

// readUntil reads events until one of type typ arrives.
func readUntil(t *testing.T, c *websocket.Conn, typ events.Type) wireEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err)
		var ev wireEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		if ev.Type == typ {
			return ev
		}
	}
}

func connect(t *testing.T, srv *httptest.Server) (*websocket.Conn, string) {
	t.Helper()
	c := dial(t, srv, Subprotocol)
	ev := readUntil(t, c, events.Connected)
	var p events.ConnectedPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &p))
	require.NotEmpty(t, p.PlayerID)
	return c, p.PlayerID
}

func TestWebSocketRoomFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	alice, aliceID := connect(t, srv)
	send(t, alice, "create-room", map[string]string{"name": "Friday", "playerName": "Alice"})
	var room wireRoom
	require.NoError(t, json.Unmarshal(readUntil(t, alice, events.RoomUpdated).Payload, &room))
	assert.Equal(t, aliceID, room.HostID)
	assert.Equal(t, "Friday", room.Name)

	bob, bobID := connect(t, srv)
	assert.NotEqual(t, aliceID, bobID)
	send(t, bob, "join-room", map[string]string{"roomId": room.ID, "playerName": "Bob"})
	readUntil(t, bob, events.RoomUpdated)
	readUntil(t, alice, events.PlayerJoined)

	send(t, bob, "pass", nil)
	var errPayload events.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, events.Error).Payload, &errPayload))
	assert.Contains(t, errPayload.Message, "no game")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bob.Write(ctx, websocket.MessageText, []byte("not json")))
	readUntil(t, bob, events.Error)

	resp, err := http.Get(srv.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var rooms []wireRoom
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	assert.Len(t, rooms[0].Players, 2)

	require.NoError(t, bob.Close(websocket.StatusNormalClosure, "bye"))
	var left events.PlayerLeftPayload
	require.NoError(t, json.Unmarshal(readUntil(t, alice, events.PlayerLeft).Payload, &left))
	assert.Equal(t, bobID, left.PlayerID)
}

func TestWebSocketRequiresSubprotocol(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(BadSubprotocolError), websocket.CloseStatus(err))
}

func TestRoomEndpoints(t *testing.T) {
	srv, dir := newTestServer(t)
	r, err := dir.CreateRoom("h", "Friday", "Alice")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/rooms/" + r.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got wireRoom
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "h", got.HostID)

	missing, err := http.Get(srv.URL + "/rooms/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
