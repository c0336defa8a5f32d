// internal/coordinator/schedule.go
package coordinator

import (
	"time"

	"github.com/jason-s-yu/dalmuti/internal/ai"
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/lobby"
	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/sirupsen/logrus"
)

// step is timed work on a room. It runs under the room lock with a fresh
// copy of the room and its game.
type step func(r *lobby.Room, g *game.Game)

// schedule arms whatever should happen next in r without player input, or
// cancels the room's timer if nothing should. The caller holds the room lock.
func (c *Coordinator) schedule(r *lobby.Room) {
	g := r.CurrentGame
	if g == nil {
		c.timers.Cancel(r.ID)
		return
	}

	switch g.Phase {
	case game.PhaseTax:
		if g.GameOptions.HasTimeLimit() {
			c.arm(r.ID, g.Version, c.turnLimit(g), c.autoPayTax)
			return
		}
	case game.PhasePlaying:
		cur := g.CurrentPlayer()
		if cur != nil && cur.IsAI() {
			c.arm(r.ID, g.Version, c.cfg.AIDelay, c.playAITurn)
			return
		}
		if g.GameOptions.HasTimeLimit() {
			c.arm(r.ID, g.Version, c.turnLimit(g), c.expireTurn)
			return
		}
	}
	c.timers.Cancel(r.ID)
}

// turnLimit converts the game's limit to a duration, saturating at
// MaxTurnTimeLimit units.
func (c *Coordinator) turnLimit(g *game.Game) time.Duration {
	limit := *g.GameOptions.TurnTimeLimit
	if limit > models.MaxTurnTimeLimit {
		limit = models.MaxTurnTimeLimit
	}
	if limit < 1 {
		limit = 1
	}
	return time.Duration(limit) * c.cfg.TurnUnit
}

// arm schedules fn for the game state identified by version. If the game
// has moved on by the time the timer fires, fn is skipped.
func (c *Coordinator) arm(roomID string, version uint64, d time.Duration, fn step) {
	c.timers.Arm(roomID, d, func() {
		c.fire(roomID, version, fn)
	})
}

func (c *Coordinator) fire(roomID string, version uint64, fn step) {
	unlock := c.lock(roomID)
	defer unlock()
	defer c.recoverRoom(roomID)

	r, err := c.dir.GetRoom(roomID)
	if err != nil {
		c.forget(roomID)
		return
	}
	g := r.CurrentGame
	if g == nil || g.Version != version {
		c.logger.WithField("room", roomID).Debug("stale timer ignored")
		return
	}
	fn(r, g)
}

func (c *Coordinator) difficulty(p *models.Player) ai.Difficulty {
	if d, err := ai.ParseDifficulty(p.Difficulty); err == nil {
		return d
	}
	return c.cfg.DefaultDifficulty
}

// playAITurn makes the current AI seat move. If the strategy fails or its
// play is rejected the seat passes instead.
func (c *Coordinator) playAITurn(r *lobby.Room, g *game.Game) {
	cur := g.CurrentPlayer()
	if cur == nil || !cur.IsAI() {
		c.schedule(r)
		return
	}
	id := cur.ID
	log := c.logger.WithFields(logrus.Fields{"room": r.ID, "player": id})

	played := false
	action, err := ai.Decide(g, id, c.difficulty(cur))
	switch {
	case err != nil:
		log.Warnf("AI strategy failed, passing: %v", err)
	case !action.Pass:
		if err := g.Play(id, action.Cards); err != nil {
			log.Warnf("AI play rejected, passing: %v", err)
		} else {
			played = true
		}
	}
	if !played {
		if err := g.Pass(id); err != nil {
			log.Errorf("AI pass rejected: %v", err)
			return
		}
	}
	if err := c.apply(r, g); err != nil {
		log.Error(err)
	}
}

// expireTurn passes for a human who ran out of time.
func (c *Coordinator) expireTurn(r *lobby.Room, g *game.Game) {
	cur := g.CurrentPlayer()
	if cur == nil {
		return
	}
	if cur.IsAI() {
		c.schedule(r)
		return
	}
	log := c.logger.WithFields(logrus.Fields{"room": r.ID, "player": cur.ID})
	log.Info("turn timed out, passing")
	if err := g.Pass(cur.ID); err != nil {
		log.Errorf("timeout pass rejected: %v", err)
		return
	}
	if err := c.apply(r, g); err != nil {
		log.Error(err)
	}
}

// autoPayTax settles every outstanding tax request with the payer's weakest
// cards.
func (c *Coordinator) autoPayTax(r *lobby.Room, g *game.Game) {
	for _, req := range append([]models.TaxRequest(nil), g.PendingTax...) {
		payer := g.Player(req.FromPlayerID)
		if payer == nil {
			continue
		}
		cards := ai.SelectTaxCards(payer.Cards, req.CardCount, g.IsRevolution)
		if err := g.SubmitTax(payer.ID, cards); err != nil {
			c.logger.WithFields(logrus.Fields{"room": r.ID, "player": payer.ID}).Warnf("automatic tax payment failed: %v", err)
		}
	}
	if err := c.apply(r, g); err != nil {
		c.logger.WithField("room", r.ID).Error(err)
	}
}
