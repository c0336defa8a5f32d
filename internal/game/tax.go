// internal/game/tax.go
package game

import (
	"fmt"
	"sort"

	"github.com/jason-s-yu/dalmuti/internal/models"
)

// CalculateTaxRequests pairs players by their previous Position. The last
// place pays two cards to first place; with four or more players the second
// to last also pays one card to second place. Ties keep seat order.
func CalculateTaxRequests(players []models.Player) []models.TaxRequest {
	if len(players) < 2 {
		return []models.TaxRequest{}
	}
	ordered := make([]models.Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	n := len(ordered)
	requests := []models.TaxRequest{{
		FromPlayerID: ordered[n-1].ID,
		ToPlayerID:   ordered[0].ID,
		CardCount:    2,
	}}
	if n >= 4 {
		requests = append(requests, models.TaxRequest{
			FromPlayerID: ordered[n-2].ID,
			ToPlayerID:   ordered[1].ID,
			CardCount:    1,
		})
	}
	return requests
}

// ApplyTax moves cards from one hand to another. The cards must be held by
// fromID. The receiving hand is re-sorted; the phase is left alone.
func (g *Game) ApplyTax(fromID, toID string, cards []models.Card) error {
	from, to := g.Player(fromID), g.Player(toID)
	if from == nil {
		return fmt.Errorf("%w: tax payer %s", ErrNotFound, fromID)
	}
	if to == nil {
		return fmt.Errorf("%w: tax receiver %s", ErrNotFound, toID)
	}
	held, err := resolveCards(from.Cards, cards)
	if err != nil {
		return err
	}

	from.Cards = removeCards(from.Cards, held)
	from.CardCount = len(from.Cards)
	to.Cards = SortHand(append(to.Cards, held...), g.IsRevolution)
	to.CardCount = len(to.Cards)
	g.Version++
	return nil
}

// PendingTaxFor returns the outstanding request owed by playerID, if any.
func (g *Game) PendingTaxFor(playerID string) (models.TaxRequest, bool) {
	for _, req := range g.PendingTax {
		if req.FromPlayerID == playerID {
			return req, true
		}
	}
	return models.TaxRequest{}, false
}

// SubmitTax settles playerID's outstanding request with exactly the owed
// number of cards. When the last request is settled play begins.
func (g *Game) SubmitTax(playerID string, cards []models.Card) error {
	if g.playerIndex(playerID) < 0 {
		return fmt.Errorf("%w: player %s is not in this game", ErrNotFound, playerID)
	}
	if g.Phase != PhaseTax {
		return fmt.Errorf("%w: game is in the %s phase", ErrInvalidState, g.Phase)
	}
	req, ok := g.PendingTaxFor(playerID)
	if !ok {
		return fmt.Errorf("%w: no tax owed", ErrInvalidState)
	}
	if len(cards) != req.CardCount {
		return fmt.Errorf("%w: tax is %d card(s), got %d", ErrIllegalPlay, req.CardCount, len(cards))
	}
	if err := g.ApplyTax(req.FromPlayerID, req.ToPlayerID, cards); err != nil {
		return err
	}

	remaining := g.PendingTax[:0]
	for _, r := range g.PendingTax {
		if r.FromPlayerID != playerID {
			remaining = append(remaining, r)
		}
	}
	g.PendingTax = remaining
	if len(g.PendingTax) == 0 {
		g.Phase = PhasePlaying
		g.TaxPhaseComplete = true
		g.refreshTurnStart()
	}
	return nil
}
