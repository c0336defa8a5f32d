// internal/ai/strategy.go
package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/models"
)

// Difficulty selects how an AI seat picks among its legal plays.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Thresholds used by Hard.
const (
	threatHandSize = 3
	bulkHandSize   = 10
	raceHandSize   = 5
)

// ParseDifficulty reads a difficulty name, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown AI difficulty: %q", s)
	}
}

// Action is what an AI seat does on its turn: pass, or play Cards.
type Action struct {
	Pass  bool          `json:"pass"`
	Cards []models.Card `json:"cards,omitempty"`
}

// Decide picks a move for playerID from the game snapshot g. It reads g and
// never modifies it.
func Decide(g *game.Game, playerID string, difficulty Difficulty) (Action, error) {
	player := g.Player(playerID)
	if player == nil {
		return Action{}, fmt.Errorf("%w: player %s is not in this game", game.ErrNotFound, playerID)
	}
	if player.HasFinished || len(player.Cards) == 0 {
		return Action{}, fmt.Errorf("%w: %s has no cards left", game.ErrAlreadyFinished, player.Name)
	}

	if g.CurrentTurn == nil {
		return Action{Cards: leadSet(player.Cards)}, nil
	}

	options := candidates(player.Cards, g.CurrentTurn, g.IsRevolution)
	if len(options) == 0 {
		return Action{Pass: true}, nil
	}

	var pick []models.Card
	switch difficulty {
	case Easy:
		pick = options[0]
	case Hard:
		pick = hardPick(options, g, player)
	default:
		pick = bulkiest(options, player.Cards)
	}
	return Action{Cards: pick}, nil
}

// bulkiest returns the option whose rank the player holds the most of.
func bulkiest(options [][]models.Card, hand []models.Card) []models.Card {
	held := make(map[models.Rank]int)
	for _, c := range hand {
		held[c.Rank]++
	}
	ranked := append([][]models.Card(nil), options...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return held[setRank(ranked[i])] > held[setRank(ranked[j])]
	})
	return ranked[0]
}

// strongest returns the option that is hardest to beat under the current
// polarity.
func strongest(options [][]models.Card, isRevolution bool) []models.Card {
	ranked := append([][]models.Card(nil), options...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return game.Beats(game.EffectiveRank(ranked[i]), game.EffectiveRank(ranked[j]), isRevolution)
	})
	return ranked[0]
}

func hardPick(options [][]models.Card, g *game.Game, self *models.Player) []models.Card {
	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == self.ID || p.HasFinished {
			continue
		}
		if len(p.Cards) <= threatHandSize {
			return strongest(options, g.IsRevolution)
		}
	}
	switch {
	case len(self.Cards) > bulkHandSize:
		return bulkiest(options, self.Cards)
	case len(self.Cards) <= raceHandSize:
		return strongest(options, g.IsRevolution)
	default:
		return bulkiest(options, self.Cards)
	}
}

// SelectTaxCards picks the count weakest cards in hand to hand over: the
// highest numbers normally, the lowest under revolution. Jokers are always
// kept back until nothing else is left.
func SelectTaxCards(hand []models.Card, count int, isRevolution bool) []models.Card {
	ordered := models.CloneCards(hand)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Rank, ordered[j].Rank
		if a.IsJoker() != b.IsJoker() {
			return b.IsJoker()
		}
		// weaker first
		return game.Beats(int(b), int(a), isRevolution)
	})
	if count > len(ordered) {
		count = len(ordered)
	}
	if count < 0 {
		count = 0
	}
	return ordered[:count]
}
