package game

import "github.com/jason-s-yu/dalmuti/internal/models"

// AllJokerRank is the effective rank of a set made only of jokers. It sits
// below every numbered rank in normal play.
const AllJokerRank = 13

// RevolutionSize is the minimum set size that toggles a revolution.
const RevolutionSize = 8

// sharedRank returns the rank shared by the non-joker cards of a set, whether
// any non-joker was present, and false in ok if the non-jokers disagree.
func sharedRank(cards []models.Card) (rank models.Rank, hasNumbered, ok bool) {
	for _, c := range cards {
		if c.Rank.IsJoker() {
			continue
		}
		if !hasNumbered {
			rank, hasNumbered = c.Rank, true
			continue
		}
		if c.Rank != rank {
			return 0, true, false
		}
	}
	return rank, hasNumbered, true
}

// IsValidSet reports whether cards is non-empty and its non-joker cards all
// share one rank. Jokers may fill in for any rank or be played alone.
func IsValidSet(cards []models.Card) bool {
	if len(cards) == 0 {
		return false
	}
	_, _, ok := sharedRank(cards)
	return ok
}

// EffectiveRank is the comparison rank of a valid set: the shared numbered
// rank, or AllJokerRank when the set is only jokers.
func EffectiveRank(cards []models.Card) int {
	rank, hasNumbered, _ := sharedRank(cards)
	if !hasNumbered {
		return AllJokerRank
	}
	return int(rank)
}

// Beats reports whether effective value a beats b under the given polarity.
// Lower numbers win normally; a revolution flips that.
func Beats(a, b int, isRevolution bool) bool {
	if isRevolution {
		return a > b
	}
	return a < b
}

// CanPlay reports whether proposed may be played on top of table. With no
// table turn any valid set leads, whatever its size. Otherwise the set must
// match the table's card count and strictly beat its effective rank.
func CanPlay(proposed []models.Card, table *models.Turn, isRevolution bool) bool {
	if !IsValidSet(proposed) {
		return false
	}
	if table == nil {
		return true
	}
	if len(proposed) != len(table.Cards) {
		return false
	}
	return Beats(EffectiveRank(proposed), EffectiveRank(table.Cards), isRevolution)
}

// IsRevolutionTrigger reports whether cards is a set of eight or more whose
// numbered cards share one rank. Jokers do not block the trigger.
func IsRevolutionTrigger(cards []models.Card) bool {
	if len(cards) < RevolutionSize {
		return false
	}
	_, hasNumbered, ok := sharedRank(cards)
	return ok && hasNumbered
}
