package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Rank is a card rank. Numeric ranks run 1..12 where a lower number is a
// stronger card. Joker is the wild rank.
type Rank int

const (
	Joker   Rank = 0
	MinRank Rank = 1
	MaxRank Rank = 12
)

const jokerName = "joker"

// IsJoker reports whether r is the wild rank.
func (r Rank) IsJoker() bool {
	return r == Joker
}

func (r Rank) String() string {
	if r.IsJoker() {
		return jokerName
	}
	return strconv.Itoa(int(r))
}

// MarshalJSON renders jokers as "joker" and every other rank as a number.
func (r Rank) MarshalJSON() ([]byte, error) {
	if r.IsJoker() {
		return json.Marshal(jokerName)
	}
	return json.Marshal(int(r))
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != jokerName {
			return fmt.Errorf("unknown rank %q", name)
		}
		*r = Joker
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid rank: %s", data)
	}
	if n < int(MinRank) || n > int(MaxRank) {
		return fmt.Errorf("rank %d out of range", n)
	}
	*r = Rank(n)
	return nil
}

// Card is a single immutable card. ID is unique within a deck and stable for
// the card's whole lifetime.
type Card struct {
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

// CardIDs returns the ids of cards in order.
func CardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// CloneCards returns a copy of cards that shares no backing array.
func CloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
