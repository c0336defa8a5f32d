package game

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/models"
)

// DeckSize is 1+2+...+12 numbered cards plus two jokers.
const DeckSize = 80

// NewDeck builds the full Dalmuti deck in a fixed order: one 1, two 2s, ...,
// twelve 12s, then the two jokers.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for rank := models.MinRank; rank <= models.MaxRank; rank++ {
		for i := 0; i < int(rank); i++ {
			deck = append(deck, models.Card{Rank: rank, ID: fmt.Sprintf("%d-%d", rank, i)})
		}
	}
	deck = append(deck,
		models.Card{Rank: models.Joker, ID: "joker-1"},
		models.Card{Rank: models.Joker, ID: "joker-2"},
	)
	return deck
}

// newRand returns rng, or a time-seeded source if rng is nil.
func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle returns a uniformly shuffled copy of deck (Fisher-Yates).
func Shuffle(deck []models.Card, rng *rand.Rand) []models.Card {
	out := models.CloneCards(deck)
	newRand(rng).Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Deal shuffles a fresh deck and deals it round-robin, so card i lands in
// hand i mod playerCount and hand sizes differ by at most one.
func Deal(playerCount int, rng *rand.Rand) [][]models.Card {
	if playerCount <= 0 {
		return nil
	}
	deck := Shuffle(NewDeck(), rng)
	hands := make([][]models.Card, playerCount)
	for i, card := range deck {
		hands[i%playerCount] = append(hands[i%playerCount], card)
	}
	return hands
}

// CardValue is the comparison value of a rank. Jokers are 0.
func CardValue(rank models.Rank) int {
	if rank.IsJoker() {
		return 0
	}
	return int(rank)
}

// SortHand returns a sorted copy of cards: ascending by value, or descending
// under revolution. Equal values keep their relative order.
func SortHand(cards []models.Card, isRevolution bool) []models.Card {
	out := models.CloneCards(cards)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := CardValue(out[i].Rank), CardValue(out[j].Rank)
		if isRevolution {
			return a > b
		}
		return a < b
	})
	return out
}
