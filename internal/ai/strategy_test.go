package ai

import (
	"fmt"
	"testing"

	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardsOf(rank models.Rank, from, count int) []models.Card {
	out := make([]models.Card, count)
	for i := range out {
		out[i] = models.Card{Rank: rank, ID: fmt.Sprintf("%d-%d", rank, from+i)}
	}
	return out
}

func joker(n int) models.Card {
	return models.Card{Rank: models.Joker, ID: fmt.Sprintf("joker-%d", n)}
}

func hand(sets ...[]models.Card) []models.Card {
	var out []models.Card
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// snapshot builds a playing game where "bot" holds botHand and an opponent
// holds oppHand, with table on the table.
func snapshot(botHand, oppHand []models.Card, table *models.Turn, isRevolution bool) *game.Game {
	return &game.Game{
		RoomID: "room-1",
		Phase:  game.PhasePlaying,
		Players: []models.Player{
			{ID: "bot", Name: "AI 1", Type: models.AI, Cards: botHand},
			{ID: "opp", Name: "Human", Type: models.Human, Cards: oppHand},
		},
		CurrentTurn:  table,
		IsRevolution: isRevolution,
	}
}

func turnOf(cards []models.Card) *models.Turn {
	return &models.Turn{PlayerID: "opp", Cards: cards}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": Easy, "Medium": Medium, " HARD ": Hard} {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDifficulty("impossible")
	assert.Error(t, err)
}

func TestDecideLeadsLargestGroup(t *testing.T) {
	bot := hand(cardsOf(3, 0, 2), cardsOf(7, 0, 4), cardsOf(9, 0, 4))
	g := snapshot(bot, cardsOf(12, 0, 5), nil, false)

	for _, d := range []Difficulty{Easy, Medium, Hard} {
		action, err := Decide(g, "bot", d)
		require.NoError(t, err)
		assert.False(t, action.Pass)
		assert.Equal(t, models.CardIDs(cardsOf(7, 0, 4)), models.CardIDs(action.Cards), "difficulty %s", d)
	}
}

func TestDecidePassesWithoutLegalSet(t *testing.T) {
	g := snapshot(cardsOf(12, 0, 3), cardsOf(11, 0, 5), turnOf(cardsOf(2, 0, 2)), false)
	action, err := Decide(g, "bot", Hard)
	require.NoError(t, err)
	assert.True(t, action.Pass)
	assert.Empty(t, action.Cards)
}

func TestDecideByDifficulty(t *testing.T) {
	bot := hand(cardsOf(2, 0, 2), cardsOf(5, 0, 3), cardsOf(11, 0, 4))
	table := turnOf(cardsOf(8, 0, 2))

	easy, err := Decide(snapshot(bot, cardsOf(12, 0, 8), table, false), "bot", Easy)
	require.NoError(t, err)
	assert.Equal(t, []string{"2-0", "2-1"}, models.CardIDs(easy.Cards), "first candidate")

	medium, err := Decide(snapshot(bot, cardsOf(12, 0, 8), table, false), "bot", Medium)
	require.NoError(t, err)
	assert.Equal(t, []string{"5-0", "5-1"}, models.CardIDs(medium.Cards), "rank held most among legal sets")

	// An opponent close to going out makes Hard block with its strongest set.
	hard, err := Decide(snapshot(bot, cardsOf(12, 0, 3), table, false), "bot", Hard)
	require.NoError(t, err)
	assert.Equal(t, []string{"2-0", "2-1"}, models.CardIDs(hard.Cards))

	// No threat and a mid-sized hand: shed bulk like Medium.
	hard, err = Decide(snapshot(bot, cardsOf(12, 0, 8), table, false), "bot", Hard)
	require.NoError(t, err)
	assert.Equal(t, []string{"5-0", "5-1"}, models.CardIDs(hard.Cards))
}

func TestDecideHardRacesWithSmallHand(t *testing.T) {
	bot := hand(cardsOf(3, 0, 2), cardsOf(6, 0, 3))
	g := snapshot(bot, cardsOf(12, 0, 8), turnOf(cardsOf(9, 0, 2)), false)

	action, err := Decide(g, "bot", Hard)
	require.NoError(t, err)
	assert.Equal(t, []string{"3-0", "3-1"}, models.CardIDs(action.Cards))
}

func TestDecideUsesJokers(t *testing.T) {
	bot := hand(cardsOf(4, 0, 1), []models.Card{joker(1)}, cardsOf(12, 0, 1))
	g := snapshot(bot, cardsOf(12, 1, 8), turnOf(cardsOf(9, 0, 2)), false)

	action, err := Decide(g, "bot", Easy)
	require.NoError(t, err)
	assert.Equal(t, []string{"4-0", "joker-1"}, models.CardIDs(action.Cards))
}

func TestDecideUnderRevolution(t *testing.T) {
	bot := hand(cardsOf(2, 0, 2), cardsOf(10, 0, 2))
	g := snapshot(bot, cardsOf(12, 0, 8), turnOf(cardsOf(8, 0, 2)), true)

	action, err := Decide(g, "bot", Easy)
	require.NoError(t, err)
	assert.Equal(t, []string{"10-0", "10-1"}, models.CardIDs(action.Cards))
}

func TestDecideDoesNotModifySnapshot(t *testing.T) {
	g := snapshot(hand(cardsOf(5, 0, 3), cardsOf(7, 0, 2)), cardsOf(12, 0, 8), turnOf(cardsOf(9, 0, 2)), false)
	before := g.Clone()

	_, err := Decide(g, "bot", Medium)
	require.NoError(t, err)
	assert.Equal(t, before, g.Clone())
}

func TestDecideErrors(t *testing.T) {
	g := snapshot(nil, cardsOf(12, 0, 8), nil, false)

	_, err := Decide(g, "ghost", Easy)
	assert.ErrorIs(t, err, game.ErrNotFound)

	_, err = Decide(g, "bot", Easy)
	assert.ErrorIs(t, err, game.ErrAlreadyFinished)
}

func TestSelectTaxCards(t *testing.T) {
	h := hand(cardsOf(1, 0, 1), []models.Card{joker(1)}, cardsOf(12, 0, 2), cardsOf(5, 0, 1))

	assert.Equal(t, []string{"12-0", "12-1"}, models.CardIDs(SelectTaxCards(h, 2, false)))
	assert.Equal(t, []string{"1-0", "5-0"}, models.CardIDs(SelectTaxCards(h, 2, true)))
	assert.Equal(t, "joker-1", SelectTaxCards(h, 5, false)[4].ID, "jokers are given up last")
	assert.Len(t, SelectTaxCards(h, 9, false), 5)
	assert.Empty(t, SelectTaxCards(h, 0, false))
}
