// internal/coordinator/coordinator.go
package coordinator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/ai"
	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/lobby"
	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/sirupsen/logrus"
)

// Config tunes the pacing of server-driven turns.
type Config struct {
	// AIDelay is the pause before each AI move.
	AIDelay time.Duration
	// TurnUnit is the length of one unit of GameOptions.TurnTimeLimit.
	TurnUnit time.Duration
	// DefaultDifficulty is used for AI seats added without one and for
	// seats taken over from departing players.
	DefaultDifficulty ai.Difficulty
}

func DefaultConfig() Config {
	return Config{
		AIDelay:           time.Second,
		TurnUnit:          time.Second,
		DefaultDifficulty: ai.Medium,
	}
}

// Coordinator applies player intents to rooms and drives everything that
// happens without a player: AI moves, turn timeouts and AI tax payments.
// Work on one room is serialised by that room's lock; events for a room are
// published while the lock is held so members see them in order.
type Coordinator struct {
	dir    *lobby.Directory
	pub    events.Publisher
	timers *Timers
	cfg    Config
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir *lobby.Directory, pub events.Publisher, cfg Config, logger *logrus.Logger) *Coordinator {
	if cfg.TurnUnit <= 0 {
		cfg.TurnUnit = time.Second
	}
	if cfg.DefaultDifficulty == "" {
		cfg.DefaultDifficulty = ai.Medium
	}
	return &Coordinator{
		dir:    dir,
		pub:    pub,
		timers: NewTimers(),
		cfg:    cfg,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Close cancels every pending timer.
func (c *Coordinator) Close() {
	c.timers.StopAll()
}

// lock takes roomID's lock and returns its release.
func (c *Coordinator) lock(roomID string) func() {
	c.mu.Lock()
	l, ok := c.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[roomID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops everything the coordinator holds for a deleted room.
func (c *Coordinator) forget(roomID string) {
	c.timers.Cancel(roomID)
	c.mu.Lock()
	delete(c.locks, roomID)
	c.mu.Unlock()
}

func (c *Coordinator) recoverRoom(roomID string) {
	if r := recover(); r != nil {
		c.logger.WithField("room", roomID).Errorf("panic in room work: %v", r)
	}
}

// inRoom runs fn under the lock of playerID's room, with a fresh copy of
// the room.
func (c *Coordinator) inRoom(playerID string, fn func(r *lobby.Room) error) error {
	r, err := c.dir.FindRoomByPlayer(playerID)
	if err != nil {
		return err
	}
	unlock := c.lock(r.ID)
	defer unlock()

	r, err = c.dir.GetRoom(r.ID)
	if err != nil {
		return err
	}
	if r.Player(playerID) == nil {
		return fmt.Errorf("%w: player %s is not in room %s", game.ErrNotFound, playerID, r.ID)
	}
	return fn(r)
}

func requireHost(r *lobby.Room, playerID string) error {
	if r.HostID != playerID {
		return fmt.Errorf("%w: only the host can do that", game.ErrPermissionDenied)
	}
	return nil
}

func activeGame(r *lobby.Room) (*game.Game, error) {
	if r.CurrentGame == nil {
		return nil, fmt.Errorf("%w: no game in this room", game.ErrInvalidState)
	}
	return r.CurrentGame, nil
}

func playerName(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

// CreateRoom opens a room hosted by playerID.
func (c *Coordinator) CreateRoom(playerID, name, hostName string) (*lobby.Room, error) {
	r, err := c.dir.CreateRoom(playerID, name, playerName(hostName, "Host"))
	if err != nil {
		return nil, err
	}
	unlock := c.lock(r.ID)
	defer unlock()

	if r, err = c.dir.GetRoom(r.ID); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{"room": r.ID, "player": playerID}).Info("room created")
	c.broadcastRoom(r)
	return r, nil
}

// JoinRoom seats playerID in roomID.
func (c *Coordinator) JoinRoom(playerID, roomID, name string) (*lobby.Room, error) {
	unlock := c.lock(roomID)
	defer unlock()

	r, err := c.dir.JoinRoom(roomID, playerID, playerName(name, "Player"))
	if errors.Is(err, game.ErrNotFound) {
		// lock made an entry for a room that does not exist.
		c.forget(roomID)
	}
	if err != nil {
		return nil, err
	}
	c.broadcastRoom(r)
	c.pub.Broadcast(r.ID, r.HumanIDs(), events.Event{Type: events.PlayerJoined, Payload: *r.Player(playerID)})
	return r, nil
}

// LeaveRoom takes playerID out of its room. A seat in a running game is
// handed to an AI so the others can finish.
func (c *Coordinator) LeaveRoom(playerID string) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		if r.InProgress() && r.CurrentGame.Player(playerID) != nil {
			g := r.CurrentGame
			if err := g.ReplaceWithAI(playerID, string(c.cfg.DefaultDifficulty)); err != nil {
				return err
			}
			if err := c.dir.UpdateGame(r.ID, g); err != nil {
				return err
			}
		}

		left, err := c.dir.LeaveRoom(r.ID, playerID)
		if err != nil {
			return err
		}
		leftEvent := events.Event{Type: events.PlayerLeft, Payload: events.PlayerLeftPayload{PlayerID: playerID}}
		c.logger.WithFields(logrus.Fields{"room": r.ID, "player": playerID}).Info("player left room")

		if left == nil {
			c.pub.Send(playerID, leftEvent)
			c.forget(r.ID)
			return nil
		}
		c.broadcastRoom(left)
		c.pub.Broadcast(left.ID, append(left.HumanIDs(), playerID), leftEvent)
		if left.InProgress() {
			c.publishGame(left, events.GameUpdated)
			c.schedule(left)
		}
		return nil
	})
}

// Disconnect is LeaveRoom for a dropped connection; a player in no room is
// not an error.
func (c *Coordinator) Disconnect(playerID string) {
	err := c.LeaveRoom(playerID)
	if err != nil && !errors.Is(err, game.ErrNotFound) {
		c.logger.WithField("player", playerID).Warnf("cleanup after disconnect failed: %v", err)
	}
}

// AddAI seats an AI player. Host only.
func (c *Coordinator) AddAI(playerID, difficulty string) error {
	d := c.cfg.DefaultDifficulty
	if difficulty != "" {
		parsed, err := ai.ParseDifficulty(difficulty)
		if err != nil {
			return fmt.Errorf("%w: %v", game.ErrInvalidState, err)
		}
		d = parsed
	}
	return c.inRoom(playerID, func(r *lobby.Room) error {
		if err := requireHost(r, playerID); err != nil {
			return err
		}
		updated, err := c.dir.AddAI(r.ID, string(d))
		if err != nil {
			return err
		}
		c.broadcastRoom(updated)
		return nil
	})
}

func (c *Coordinator) SetReady(playerID string, ready bool) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		updated, err := c.dir.SetReady(r.ID, playerID, ready)
		if err != nil {
			return err
		}
		c.broadcastRoom(updated)
		return nil
	})
}

// UpdateOptions changes the rules for the room's next game. Host only.
func (c *Coordinator) UpdateOptions(playerID string, opts models.GameOptions) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		if err := requireHost(r, playerID); err != nil {
			return err
		}
		updated, err := c.dir.UpdateOptions(r.ID, opts)
		if err != nil {
			return err
		}
		c.broadcastRoom(updated)
		return nil
	})
}

// StartGame deals the first game once everyone is ready. Host only.
func (c *Coordinator) StartGame(playerID string) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		if err := requireHost(r, playerID); err != nil {
			return err
		}
		if _, err := c.dir.StartGame(r.ID, false, false); err != nil {
			return err
		}
		return c.beginGame(r.ID)
	})
}

// RestartGame deals a new game seeded from the last one's finish order,
// without waiting for ready flags. Host only.
func (c *Coordinator) RestartGame(playerID string) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		if err := requireHost(r, playerID); err != nil {
			return err
		}
		if _, err := c.dir.StartGame(r.ID, true, true); err != nil {
			return err
		}
		return c.beginGame(r.ID)
	})
}

func (c *Coordinator) PlayCards(playerID string, cards []models.Card) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		g, err := activeGame(r)
		if err != nil {
			return err
		}
		if err := g.Play(playerID, cards); err != nil {
			return err
		}
		return c.apply(r, g)
	})
}

func (c *Coordinator) Pass(playerID string) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		g, err := activeGame(r)
		if err != nil {
			return err
		}
		if err := g.Pass(playerID); err != nil {
			return err
		}
		return c.apply(r, g)
	})
}

func (c *Coordinator) SubmitTax(playerID string, cards []models.Card) error {
	return c.inRoom(playerID, func(r *lobby.Room) error {
		g, err := activeGame(r)
		if err != nil {
			return err
		}
		if err := g.SubmitTax(playerID, cards); err != nil {
			return err
		}
		return c.apply(r, g)
	})
}

// beginGame announces a freshly dealt game, collects what tax it can and
// schedules the first actor. The caller holds the room lock.
func (c *Coordinator) beginGame(roomID string) error {
	r, err := c.dir.GetRoom(roomID)
	if err != nil {
		return err
	}
	c.publishGame(r, events.GameStarted)

	g := r.CurrentGame
	if g.Phase == game.PhaseTax && c.collectTax(r, g) {
		if err := c.dir.UpdateGame(r.ID, g); err != nil {
			return err
		}
		r.CurrentGame = g
		c.publishGame(r, events.GameUpdated)
	}
	c.schedule(r)
	return nil
}

// collectTax settles every request owed by an AI seat and asks human payers
// for their cards. It reports whether g changed.
func (c *Coordinator) collectTax(r *lobby.Room, g *game.Game) bool {
	changed := false
	for _, req := range append([]models.TaxRequest(nil), g.PendingTax...) {
		payer := g.Player(req.FromPlayerID)
		if payer == nil {
			continue
		}
		if !payer.IsAI() {
			c.pub.Send(req.FromPlayerID, events.Event{Type: events.TaxRequest, Payload: req})
			continue
		}
		cards := ai.SelectTaxCards(payer.Cards, req.CardCount, g.IsRevolution)
		if err := g.SubmitTax(payer.ID, cards); err != nil {
			c.logger.WithFields(logrus.Fields{"room": r.ID, "player": payer.ID}).Warnf("AI tax payment failed: %v", err)
			continue
		}
		changed = true
	}
	return changed
}

// apply stores g, publishes it and decides what happens next. The caller
// holds the room lock.
func (c *Coordinator) apply(r *lobby.Room, g *game.Game) error {
	if err := c.dir.UpdateGame(r.ID, g); err != nil {
		return err
	}
	r.CurrentGame = g
	c.publishGame(r, events.GameUpdated)
	if g.Phase == game.PhaseFinished {
		c.finish(r)
		return nil
	}
	c.schedule(r)
	return nil
}

// finish publishes the standings and records them for the next restart.
func (c *Coordinator) finish(r *lobby.Room) {
	c.timers.Cancel(r.ID)
	results := r.CurrentGame.Results()
	if err := c.dir.RecordResults(r.ID, results); err != nil {
		c.logger.WithField("room", r.ID).Warnf("failed to record results: %v", err)
	}
	c.pub.Broadcast(r.ID, r.HumanIDs(), events.Event{Type: events.GameFinished, Payload: results})
	if fresh, err := c.dir.GetRoom(r.ID); err == nil {
		c.broadcastRoom(fresh)
	}
	c.logger.WithFields(logrus.Fields{"room": r.ID, "turns": len(r.CurrentGame.TurnHistory)}).Info("game finished")
}

func (c *Coordinator) publishGame(r *lobby.Room, typ events.Type) {
	for _, id := range r.HumanIDs() {
		c.pub.Send(id, events.Event{Type: typ, Payload: r.CurrentGame.ViewFor(id)})
	}
}

func (c *Coordinator) broadcastRoom(r *lobby.Room) {
	c.pub.Broadcast(r.ID, r.HumanIDs(), events.Event{Type: events.RoomUpdated, Payload: r.Public()})
}
