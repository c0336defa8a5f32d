// internal/game/view.go
package game

import "github.com/jason-s-yu/dalmuti/internal/models"

// ViewFor returns a snapshot of the game as viewerID may see it: the viewer's
// own hand in full and only the hand size of everyone else. Played cards in
// the table turn and history stay visible to all.
func (g *Game) ViewFor(viewerID string) *Game {
	view := g.Clone()
	for i := range view.Players {
		p := &view.Players[i]
		p.CardCount = len(p.Cards)
		if p.ID != viewerID {
			p.Cards = []models.Card{}
		}
	}
	return view
}

// PublicView hides every hand. It is what spectators and room listings get.
func (g *Game) PublicView() *Game {
	return g.ViewFor("")
}
