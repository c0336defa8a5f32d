// internal/rating/standings.go
package rating

import "github.com/jason-s-yu/dalmuti/internal/models"

// Score turns a finishing position into a result in [0, 1]: first place
// scores 1, last place 0.
func Score(position, players int) float64 {
	if players < 2 {
		return 0.5
	}
	s := 1.0 - float64(position-1)/float64(players-1)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// ApplyResults rates one finished game. Each player is scored by position
// against the average of everyone else at the table. ratings is not
// modified; players missing from it start at Default.
func ApplyResults(ratings map[string]Rating, results []models.GameResult) map[string]Rating {
	out := make(map[string]Rating, len(ratings)+len(results))
	for id, r := range ratings {
		out[id] = r
	}
	n := len(results)
	if n < 2 {
		return out
	}

	before := make([]Rating, n)
	var sumValue, sumDev float64
	for i, res := range results {
		r, ok := ratings[res.PlayerID]
		if !ok {
			r = Default()
		}
		before[i] = r
		sumValue += r.Value
		sumDev += r.Deviation
	}

	for i, res := range results {
		opp := Rating{
			Value:      (sumValue - before[i].Value) / float64(n-1),
			Deviation:  (sumDev - before[i].Deviation) / float64(n-1),
			Volatility: DefaultVolatility,
		}
		out[res.PlayerID] = Update(before[i], opp, Score(res.Position, n))
	}
	return out
}
