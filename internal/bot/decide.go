package bot

import (
	rand "math/rand/v2"

	"github.com/homegame/holdem/internal/deck"
	"github.com/homegame/holdem/internal/game"
)

// View is everything the engine considers for one decision: the bot's
// own cards and stack plus the public table state.
type View struct {
	HoleCards      []deck.Card
	Chips          int
	CurrentBet     int
	MaxBet         int
	Pot            int
	BigBlind       int
	Preflop        bool
	SmallBlindSeat bool
	BigBlindSeat   bool
	ActiveSeats    int // seats that can still act, bot included

	botSeat bool
}

// Decision is one chosen action. Chat is an optional flavor line for
// the sideband, empty most of the time.
type Decision struct {
	Action  game.Action
	RaiseBy int
	Chat    string
}

// Decide maps a table view to an action. All randomness comes from rng,
// so a seeded source makes the engine reproducible in tests. The
// probability bands are intentionally loose-aggressive; see the band
// comments inline.
func Decide(v View, rng *rand.Rand) Decision {
	strength := HandStrength(v.HoleCards)

	call := v.MaxBet - v.CurrentBet
	canCall := call > 0 && v.Chips > 0
	potOdds := 0.0
	if v.Pot+call > 0 {
		potOdds = float64(call) / float64(v.Pot+call)
	}

	// Per-decision aggression multiplier in [1.0, 1.6).
	aggression := 1.0 + rng.Float64()*0.6

	headsUpSB := v.SmallBlindSeat && v.ActiveSeats == 2 && v.MaxBet == v.BigBlind
	bbOption := v.BigBlindSeat && v.Preflop && v.MaxBet == v.BigBlind

	action := game.Fold
	switch {
	case strength >= 0.8:
		// Premium: always play, raise 75% of the time.
		if rng.Float64() < 0.25 {
			action = game.Call
		} else {
			action = game.Raise
		}
	case strength >= 0.6:
		if rng.Float64() < 0.9*aggression {
			action = game.Call
		}
		if action == game.Call && rng.Float64() < 0.5 {
			action = game.Raise
		}
	case strength >= 0.4:
		if rng.Float64() < 0.8*aggression {
			action = game.Call
		}
		if action == game.Call && rng.Float64() < 0.35 {
			action = game.Raise
		}
	case strength >= 0.25:
		// Marginal: pot odds decide how often to continue.
		threshold := 0.5 * aggression
		if potOdds < 0.5 {
			threshold = 0.7 * aggression
		}
		if rng.Float64() < threshold {
			action = game.Call
		}
		if action == game.Call && rng.Float64() < 0.15 {
			action = game.Raise
		}
	case strength >= 0.15:
		if !canCall {
			action = game.Check
			if rng.Float64() < 0.1 {
				action = game.Raise
			}
		} else {
			threshold := 0.25 * aggression
			if potOdds < 0.3 {
				threshold = 0.45 * aggression
			}
			if rng.Float64() < threshold {
				action = game.Call
			}
			if action == game.Call && rng.Float64() < 0.1 {
				action = game.Raise
			}
		}
	default:
		// Trash: check when free, rare pure bluff.
		if !canCall {
			action = game.Check
			if rng.Float64() < 0.05 {
				action = game.Raise
			}
		} else {
			if rng.Float64() < 0.15*aggression {
				action = game.Call
			}
			if action == game.Call && rng.Float64() < 0.05 {
				action = game.Raise
			}
		}
	}

	if !canCall && (action == game.Call || action == game.Fold) {
		action = game.Check
	}

	// Facing a raise (more owed than one big blind): a stricter table
	// keyed to the raise size relative to the pot replaces the choice.
	if canCall && call > v.BigBlind {
		raiseSize := 1.0
		if v.Pot > 0 {
			raiseSize = float64(call) / float64(v.Pot)
		}
		switch {
		case strength >= 0.7:
			action = game.Fold
			if rng.Float64() < 0.85 {
				action = game.Call
			}
			if action == game.Call && rng.Float64() < 0.4 {
				action = game.Raise
			}
		case strength >= 0.5:
			threshold := 0.5
			if raiseSize < 0.5 {
				threshold = 0.7
			}
			action = game.Fold
			if rng.Float64() < threshold {
				action = game.Call
			}
			if action == game.Call && rng.Float64() < 0.2 {
				action = game.Raise
			}
		case strength >= 0.3:
			threshold := 0.25
			if raiseSize < 0.3 {
				threshold = 0.5
			}
			action = game.Fold
			if rng.Float64() < threshold {
				action = game.Call
			}
		default:
			// 10% bluff defense, split 70/30 between call and 3-bet.
			action = game.Fold
			if rng.Float64() < 0.1 {
				if rng.Float64() < 0.7 {
					action = game.Call
				} else {
					action = game.Raise
				}
			}
		}
	}

	// Residual aggression: one call in five becomes a raise.
	if action == game.Call && rng.Float64() < 0.2 {
		action = game.Raise
	}

	// Heads-up small blind defends wide against the lone big blind.
	if headsUpSB && action == game.Fold {
		switch {
		case strength >= 0.3:
			action = game.Call
		case strength >= 0.2:
			if rng.Float64() < 0.7 {
				action = game.Call
			}
		case strength >= 0.15:
			if rng.Float64() < 0.5 {
				action = game.Call
			}
		default:
			if rng.Float64() < 0.2 {
				action = game.Call
			}
		}
		if action == game.Call && strength >= 0.6 && rng.Float64() < 0.4 {
			action = game.Raise
		}
	}

	// Big blind occasionally attacks its unraised preflop option.
	if bbOption && action == game.Check {
		if strength >= 0.5 && rng.Float64() < 0.3 {
			action = game.Raise
		} else if strength >= 0.4 && rng.Float64() < 0.15 {
			action = game.Raise
		}
	}

	// Loose calls and bluff raises from nowhere keep play unpredictable.
	if action == game.Fold && canCall && !headsUpSB && rng.Float64() < 0.2 {
		action = game.Call
	}
	if action == game.Fold && canCall && rng.Float64() < 0.05 {
		action = game.Raise
	}

	// Legality cleanup: never fold for free, and a raise needs chips
	// beyond the call.
	switch action {
	case game.Raise:
		if v.Chips <= call {
			if canCall {
				action = game.Call
			} else {
				action = game.Check
			}
		}
	case game.Call:
		if !canCall {
			action = game.Check
		}
	case game.Fold:
		if !canCall {
			action = game.Check
		}
	}

	d := Decision{Action: action}
	if action == game.Raise {
		d.RaiseBy = raiseBy(v, call, rng)
	}
	d.Chat = chatFor(v, action, rng)
	return d
}

// raiseBy sizes a raise: a multiplier of the minimum raise drawn from a
// mix of standard, small and oversized raises, capped at 80% of pot and
// the bot's stack.
func raiseBy(v View, call int, rng *rand.Rand) int {
	minRaise := v.BigBlind
	if call > minRaise {
		minRaise = call
	}

	var mult float64
	if rng.Float64() < 0.4 {
		mult = 2 + rng.Float64()*2
	} else if rng.Float64() < 0.3 {
		mult = 0.5 + rng.Float64()
	} else {
		mult = 4 + rng.Float64()*3
	}

	limit := float64(v.Pot) * 0.8
	if stack := float64(v.Chips - call); stack < limit {
		limit = stack
	}
	amount := float64(minRaise) * mult
	if amount > limit {
		amount = limit
	}
	by := int(amount)
	if by < minRaise {
		by = minRaise
	}
	return by
}
