// Package bot implements the heuristic decision engine that drives
// autonomous seats. Decisions are a pure function of the table view and
// an injected RNG; applying them goes through the same action API as a
// human player.
package bot

import "github.com/homegame/holdem/internal/deck"

// HandStrength scores two hole cards in [0,1]. The score is preflop
// only: pairs rank by height, then broadway combinations, then suited
// and connected hands, then bare high cards. Deliberately generous so
// bots stay in pots.
func HandStrength(hole []deck.Card) float64 {
	if len(hole) < 2 {
		return 0
	}

	r1 := int(hole[0].Rank)
	r2 := int(hole[1].Rank)
	suited := hole[0].Suit == hole[1].Suit

	if r1 == r2 {
		switch {
		case r1 >= 11:
			return 0.95 // JJ+
		case r1 >= 8:
			return 0.8
		case r1 >= 5:
			return 0.6
		default:
			return 0.4
		}
	}

	hi, lo := r1, r2
	if lo > hi {
		hi, lo = lo, hi
	}
	gap := hi - lo

	if hi >= 11 {
		if hi >= 13 && lo >= 10 {
			if suited {
				return 0.85 // AK..KJ suited
			}
			return 0.7
		}
		if lo >= 8 {
			if suited {
				return 0.6
			}
			return 0.45
		}
		if suited {
			return 0.5
		}
		return 0.35
	}

	if suited {
		switch {
		case gap <= 1:
			return 0.5 // suited connectors
		case gap <= 3:
			return 0.4
		default:
			return 0.3
		}
	}

	if gap <= 1 && hi >= 8 {
		return 0.35
	}
	if hi >= 10 {
		return 0.25
	}
	return 0.15
}
