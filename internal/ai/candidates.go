// internal/ai/candidates.go
package ai

import (
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/models"
)

// rankGroup is every card of one rank held in a hand, in hand order.
type rankGroup struct {
	rank  models.Rank
	cards []models.Card
}

// groupByRank buckets hand by rank. Numbered groups come first in ascending
// rank order, then the joker group.
func groupByRank(hand []models.Card) []rankGroup {
	buckets := make(map[models.Rank][]models.Card)
	for _, c := range hand {
		buckets[c.Rank] = append(buckets[c.Rank], c)
	}
	groups := make([]rankGroup, 0, len(buckets))
	for r := models.MinRank; r <= models.MaxRank; r++ {
		if cards, ok := buckets[r]; ok {
			groups = append(groups, rankGroup{rank: r, cards: cards})
		}
	}
	if jokers, ok := buckets[models.Joker]; ok {
		groups = append(groups, rankGroup{rank: models.Joker, cards: jokers})
	}
	return groups
}

// leadSet is the largest same-rank group in hand. Ties go to the group that
// comes first in grouping order.
func leadSet(hand []models.Card) []models.Card {
	var best []models.Card
	for _, g := range groupByRank(hand) {
		if len(g.cards) > len(best) {
			best = g.cards
		}
	}
	return models.CloneCards(best)
}

// candidates lists every set from hand that can legally follow table. Plain
// windows of each rank group come first, then sets that fill a group out
// with one or more jokers.
func candidates(hand []models.Card, table *models.Turn, isRevolution bool) [][]models.Card {
	need := len(table.Cards)
	if need == 0 {
		return nil
	}
	groups := groupByRank(hand)
	var out [][]models.Card

	for _, g := range groups {
		for i := 0; i+need <= len(g.cards); i++ {
			set := models.CloneCards(g.cards[i : i+need])
			if game.CanPlay(set, table, isRevolution) {
				out = append(out, set)
			}
		}
	}

	var jokers []models.Card
	for _, g := range groups {
		if g.rank.IsJoker() {
			jokers = g.cards
		}
	}
	if len(jokers) == 0 {
		return out
	}
	for _, g := range groups {
		if g.rank.IsJoker() || len(g.cards)+len(jokers) < need {
			continue
		}
		for used := 1; used <= min(len(jokers), need); used++ {
			numbered := need - used
			if numbered > len(g.cards) {
				continue
			}
			set := make([]models.Card, 0, need)
			set = append(set, g.cards[:numbered]...)
			set = append(set, jokers[:used]...)
			if game.CanPlay(set, table, isRevolution) {
				out = append(out, set)
			}
		}
	}
	return out
}

// setRank is the rank a set is counted under when weighing hand bulk: its
// first numbered card, or Joker for an all-joker set.
func setRank(set []models.Card) models.Rank {
	for _, c := range set {
		if !c.Rank.IsJoker() {
			return c.Rank
		}
	}
	return models.Joker
}
