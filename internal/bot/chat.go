package bot

import (
	rand "math/rand/v2"

	"github.com/homegame/holdem/internal/game"
)

// Flavor lines the bots drop on the chat sideband. Best effort only;
// an empty string means stay quiet.
var (
	foldLines = []string{
		"I fold, too risky!",
		"Not feeling this hand",
		"Folding to save my chips",
		"Better luck next hand",
		"This hand isn't for me",
		"Too rich for my blood",
		"I'm out",
		"Fold",
	}

	callLines = []string{
		"I'll call that!",
		"Let's see the next card",
		"Calling to stay in",
		"Good enough to call",
		"I'm in!",
		"Count me in",
		"I like those odds",
		"Can't fold this hand",
		"Playing this one",
		"Worth a call",
	}

	blindDefenseLines = []string{
		"Defending my small blind",
		"I'm already invested",
		"Getting good odds here",
		"Can't fold for half a bet",
		"Small blind defense",
		"Let's play heads up",
		"Worth defending",
		"I'm in from the small blind",
	}

	raiseLines = []string{
		"I'm raising the stakes!",
		"Let's make this interesting",
		"Time to up the ante",
		"I like my hand",
		"Raising!",
		"Going big!",
		"Pot odds look good",
		"Feeling aggressive today",
		"Let's build this pot",
		"I'm in to win!",
		"Time to apply pressure",
		"Let's see who's serious",
		"Building the pot!",
		"No backing down",
		"Gotta bet to win",
		"Playing to win big",
		"This hand has potential",
		"All gas, no brakes!",
	}
)

// chatFor rolls for a flavor line matching the action. Raises talk the
// most, checks never do.
func chatFor(v View, action game.Action, rng *rand.Rand) string {
	switch action {
	case game.Fold:
		if rng.Float64() < 0.15 {
			return foldLines[rng.IntN(len(foldLines))]
		}
	case game.Call:
		if rng.Float64() < 0.2 {
			if v.SmallBlindSeat && v.ActiveSeats == 2 {
				return blindDefenseLines[rng.IntN(len(blindDefenseLines))]
			}
			return callLines[rng.IntN(len(callLines))]
		}
	case game.Raise:
		if rng.Float64() < 0.3 {
			return raiseLines[rng.IntN(len(raiseLines))]
		}
	}
	return ""
}
