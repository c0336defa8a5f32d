package rating

import (
	"testing"

	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestUpdateHeadToHead(t *testing.T) {
	winner := Update(Default(), Default(), 1)
	loser := Update(Default(), Default(), 0)

	assert.Greater(t, winner.Value, DefaultRating)
	assert.Less(t, loser.Value, DefaultRating)
	assert.InDelta(t, DefaultRating-winner.Value, loser.Value-DefaultRating, 0.001, "symmetric for equal ratings")
	assert.Less(t, winner.Deviation, DefaultDeviation)
	assert.InDelta(t, DefaultVolatility, winner.Volatility, 0.01)
}

func TestUpdateDrawBetweenEqualsKeepsValue(t *testing.T) {
	r := Update(Default(), Default(), 0.5)
	assert.InDelta(t, DefaultRating, r.Value, 0.001)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, Score(1, 4))
	assert.Equal(t, 0.0, Score(4, 4))
	assert.InDelta(t, 2.0/3, Score(2, 4), 1e-9)
	assert.Equal(t, 0.5, Score(1, 1))
	assert.Equal(t, 0.0, Score(9, 4))
}

func TestApplyResults(t *testing.T) {
	results := []models.GameResult{
		{PlayerID: "a", Position: 1},
		{PlayerID: "b", Position: 2},
		{PlayerID: "c", Position: 3},
		{PlayerID: "d", Position: 4},
	}
	prior := map[string]Rating{"x": {Value: 1700, Deviation: 100, Volatility: 0.06}}

	got := ApplyResults(prior, results)

	assert.Len(t, prior, 1, "input is left alone")
	assert.Equal(t, prior["x"], got["x"], "absent players keep their rating")
	assert.Greater(t, got["a"].Value, got["b"].Value)
	assert.Greater(t, got["b"].Value, DefaultRating)
	assert.Less(t, got["c"].Value, DefaultRating)
	assert.Greater(t, got["c"].Value, got["d"].Value)
}

func TestApplyResultsNeedsTwoPlayers(t *testing.T) {
	got := ApplyResults(nil, []models.GameResult{{PlayerID: "solo", Position: 1}})
	assert.Empty(t, got)
}
