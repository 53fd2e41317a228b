// internal/game/resolver.go
package game

import (
	"github.com/jason-s-yu/highcard/internal/models"
)

// RoundOutcome reports the result of comparing one full cycle of plays.
type RoundOutcome struct {
	// Winners holds every player whose card equals the round maximum.
	// More than one entry means a tie, which awards nothing.
	Winners []*models.Player

	// GameWinner is non-nil once a sole round winner's score reaches the
	// win threshold.
	GameWinner *models.Player
}

// ResolveRound compares every player's card at the end of a full turn
// cycle. A sole highest player scores one point; ties are not broken and
// award no points. When the scoring player's total reaches winScore they
// become the overall game winner.
//
// The turn-advance logic guarantees every player has a card by the time
// this runs; players without one are skipped rather than compared.
func ResolveRound(players []*models.Player, winScore int) RoundOutcome {
	var outcome RoundOutcome

	maxCard := 0
	for _, p := range players {
		if p.Card != nil && *p.Card > maxCard {
			maxCard = *p.Card
		}
	}
	if maxCard == 0 {
		return outcome
	}

	for _, p := range players {
		if p.Card != nil && *p.Card == maxCard {
			outcome.Winners = append(outcome.Winners, p)
		}
	}

	if len(outcome.Winners) == 1 {
		winner := outcome.Winners[0]
		winner.Score++
		if winner.Score >= winScore {
			outcome.GameWinner = winner
		}
	}

	return outcome
}
