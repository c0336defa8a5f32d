// internal/lobby/directory.go
package lobby

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/jason-s-yu/dalmuti/internal/rating"
	"github.com/sirupsen/logrus"
)

// Directory owns every live room. Rooms are kept in memory only and handed
// out as deep copies, so callers never share state with the directory.
type Directory struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	rng    *rand.Rand
	logger *logrus.Logger
}

// NewDirectory returns an empty directory. A nil rng deals with a
// time-seeded source.
func NewDirectory(logger *logrus.Logger, rng *rand.Rand) *Directory {
	return &Directory{
		rooms:  make(map[string]*Room),
		rng:    rng,
		logger: logger,
	}
}

// room looks up a room. Callers hold d.mu.
func (d *Directory) room(roomID string) (*Room, error) {
	r, ok := d.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", game.ErrNotFound, roomID)
	}
	return r, nil
}

// roomOf finds the room playerID sits in. Callers hold d.mu.
func (d *Directory) roomOf(playerID string) *Room {
	for _, r := range d.rooms {
		if r.Player(playerID) != nil {
			return r
		}
	}
	return nil
}

// CreateRoom opens a room with hostID as its host. The host is seated and
// ready from the start.
func (d *Directory) CreateRoom(hostID, name, hostName string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing := d.roomOf(hostID); existing != nil {
		return nil, fmt.Errorf("%w: already in room %s", game.ErrInvalidState, existing.ID)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Room " + hostName
	}

	r := &Room{
		ID:   uuid.NewString(),
		Name: name,
		Players: []models.Player{{
			ID:      hostID,
			Name:    hostName,
			Type:    models.Human,
			IsReady: true,
		}},
		MaxPlayers:  MaxPlayers,
		HostID:      hostID,
		GameOptions: models.DefaultGameOptions(),
	}
	d.rooms[r.ID] = r
	d.logger.WithFields(logrus.Fields{"room": r.ID, "player": hostID}).Debug("room created")
	return r.Clone(), nil
}

// JoinRoom seats a human in roomID. A room that is full or mid-game turns
// newcomers away.
func (d *Directory) JoinRoom(roomID, playerID, playerName string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	if existing := d.roomOf(playerID); existing != nil {
		return nil, fmt.Errorf("%w: already in room %s", game.ErrInvalidState, existing.ID)
	}
	if len(r.Players) >= r.MaxPlayers {
		return nil, fmt.Errorf("%w: room is full", game.ErrInvalidState)
	}
	if r.InProgress() {
		return nil, fmt.Errorf("%w: a game is already in progress", game.ErrInvalidState)
	}

	r.Players = append(r.Players, models.Player{
		ID:   playerID,
		Name: playerName,
		Type: models.Human,
	})
	return r.Clone(), nil
}

// AddAI seats a server-driven player named "AI N". AI seats are always ready.
func (d *Directory) AddAI(roomID, difficulty string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	if len(r.Players) >= r.MaxPlayers {
		return nil, fmt.Errorf("%w: room is full", game.ErrInvalidState)
	}
	if r.InProgress() {
		return nil, fmt.Errorf("%w: a game is already in progress", game.ErrInvalidState)
	}

	r.Players = append(r.Players, models.Player{
		ID:         "ai-" + uuid.NewString(),
		Name:       fmt.Sprintf("AI %d", r.aiCount()+1),
		Type:       models.AI,
		IsReady:    true,
		Difficulty: difficulty,
	})
	return r.Clone(), nil
}

// LeaveRoom removes playerID from roomID. If no human is left the room is
// deleted and nil is returned. A departing host hands over to the first
// remaining human.
func (d *Directory) LeaveRoom(roomID, playerID string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	if r.Player(playerID) == nil {
		return nil, fmt.Errorf("%w: player %s is not in room %s", game.ErrNotFound, playerID, roomID)
	}

	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	r.Players = kept

	humans := r.HumanIDs()
	if len(humans) == 0 {
		delete(d.rooms, roomID)
		d.logger.WithField("room", roomID).Debug("room deleted, no humans left")
		return nil, nil
	}
	if r.HostID == playerID {
		r.HostID = humans[0]
	}
	return r.Clone(), nil
}

// SetReady marks playerID ready or not.
func (d *Directory) SetReady(roomID, playerID string, ready bool) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	p := r.Player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s is not in room %s", game.ErrNotFound, playerID, roomID)
	}
	p.IsReady = ready
	return r.Clone(), nil
}

// UpdateOptions replaces the room's options. They apply from the next game.
func (d *Directory) UpdateOptions(roomID string, opts models.GameOptions) (*Room, error) {
	if opts.TurnTimeLimit != nil {
		if limit := *opts.TurnTimeLimit; limit <= 0 || limit > models.MaxTurnTimeLimit {
			return nil, fmt.Errorf("%w: turn time limit must be between 1 and %d seconds", game.ErrInvalidState, models.MaxTurnTimeLimit)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	r.GameOptions = opts.Clone()
	return r.Clone(), nil
}

// StartGame deals a new game for the room. Everyone must be ready unless
// skipReadyCheck is set; AI seats always count as ready. With isRestart the
// previous round's finish order seeds each seat's position.
func (d *Directory) StartGame(roomID string, skipReadyCheck, isRestart bool) (*game.Game, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	if len(r.Players) < 2 {
		return nil, fmt.Errorf("%w: at least 2 players are needed", game.ErrInvalidState)
	}
	if r.InProgress() {
		return nil, fmt.Errorf("%w: a game is already in progress", game.ErrInvalidState)
	}
	if !skipReadyCheck {
		for _, p := range r.Players {
			if !p.IsReady && !p.IsAI() {
				return nil, fmt.Errorf("%w: %s is not ready", game.ErrInvalidState, p.Name)
			}
		}
	}

	r.CurrentGame = game.NewGame(r.ID, r.Players, r.GameOptions, isRestart, d.rng)
	d.logger.WithFields(logrus.Fields{
		"room":    r.ID,
		"players": len(r.Players),
		"phase":   r.CurrentGame.Phase,
		"restart": isRestart,
	}).Info("game started")
	return r.CurrentGame.Clone(), nil
}

// UpdateGame stores g as the room's current game.
func (d *Directory) UpdateGame(roomID string, g *game.Game) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return err
	}
	r.CurrentGame = g.Clone()
	return nil
}

// RecordResults copies final positions onto the room's seats so the next
// restart can seed tax pairing from them, and rates the game.
func (d *Directory) RecordResults(roomID string, results []models.GameResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return err
	}
	for _, res := range results {
		if p := r.Player(res.PlayerID); p != nil {
			position := res.Position
			p.FinishOrder = &position
		}
	}
	r.Ratings = rating.ApplyResults(r.Ratings, results)
	return nil
}

// GetRoom returns a copy of roomID.
func (d *Directory) GetRoom(roomID string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.room(roomID)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// FindRoomByPlayer returns a copy of the room playerID sits in.
func (d *Directory) FindRoomByPlayer(playerID string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.roomOf(playerID)
	if r == nil {
		return nil, fmt.Errorf("%w: player %s is not in a room", game.ErrNotFound, playerID)
	}
	return r.Clone(), nil
}

// ListRooms returns public copies of every room, ordered by name.
func (d *Directory) ListRooms() []*Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r.Public())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeleteRoom drops roomID. Unknown ids are ignored.
func (d *Directory) DeleteRoom(roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[roomID]; ok {
		delete(d.rooms, roomID)
		d.logger.WithField("room", roomID).Debug("room deleted")
	}
}
