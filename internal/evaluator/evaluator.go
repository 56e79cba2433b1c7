// Package evaluator ranks poker hands of 5 to 7 cards by their best
// 5-card combination.
package evaluator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/homegame/holdem/internal/deck"
)

// ErrInvalidInput is returned when a hand has fewer than 5 cards.
var ErrInvalidInput = errors.New("invalid input")

// Category enumerates hand categories from weakest to strongest.
type Category int

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category description.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of a hand: a category plus the tiebreak ranks
// compared left-to-right within the category.
type HandRank struct {
	Category Category `json:"category"`
	Kickers  []int    `json:"kickers"`
}

// String returns the category description, e.g. "Full House".
func (hr HandRank) String() string {
	return hr.Category.String()
}

// Evaluate returns the best 5-card hand rank obtainable from the supplied
// 5 to 7 cards (2 hole + up to 5 community).
func Evaluate(cards []deck.Card) (HandRank, error) {
	if len(cards) < 5 {
		return HandRank{}, fmt.Errorf("%w: need at least 5 cards, got %d", ErrInvalidInput, len(cards))
	}

	var rankCounts [15]int
	var suitCounts [4]int
	suitRanks := make([][]int, 4)
	for _, c := range cards {
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
		suitRanks[c.Suit] = append(suitRanks[c.Suit], int(c.Rank))
	}

	// Distinct ranks, descending. Sufficient for straight detection over
	// 5-7 card inputs because any 5 consecutive distinct ranks form a
	// playable straight.
	var distinct []int
	for r := 14; r >= 2; r-- {
		if rankCounts[r] > 0 {
			distinct = append(distinct, r)
		}
	}

	// Flush: any suit with 5 or more cards. At most one suit can qualify
	// out of 7 cards.
	flushSuit := -1
	for s, n := range suitCounts {
		if n >= 5 {
			flushSuit = s
			break
		}
	}

	if flushSuit >= 0 {
		ranks := suitRanks[flushSuit]
		sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
		if high := straightHigh(ranks); high > 0 {
			if high == 14 {
				return HandRank{Category: RoyalFlush, Kickers: []int{high}}, nil
			}
			return HandRank{Category: StraightFlush, Kickers: []int{high}}, nil
		}
	}

	// Rank multiplicities, largest first, to find quads/trips/pairs.
	quad, trips, pairs := 0, []int(nil), []int(nil)
	for _, r := range distinct {
		switch rankCounts[r] {
		case 4:
			quad = r
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		}
	}

	if quad > 0 {
		kicker := bestExcluding(distinct, quad)
		return HandRank{Category: FourOfAKind, Kickers: []int{quad, kicker}}, nil
	}

	// Full house: a triple plus any pair. With two triples the lower one
	// serves as the pair.
	if len(trips) > 0 {
		pair := 0
		if len(trips) > 1 {
			pair = trips[1]
		} else if len(pairs) > 0 {
			pair = pairs[0]
		}
		if pair > 0 {
			return HandRank{Category: FullHouse, Kickers: []int{trips[0], pair}}, nil
		}
	}

	if flushSuit >= 0 {
		ranks := suitRanks[flushSuit]
		return HandRank{Category: Flush, Kickers: ranks[:5]}, nil
	}

	if high := straightHigh(distinct); high > 0 {
		return HandRank{Category: Straight, Kickers: []int{high}}, nil
	}

	if len(trips) > 0 {
		kickers := topExcluding(distinct, 2, trips[0])
		return HandRank{Category: ThreeOfAKind, Kickers: append([]int{trips[0]}, kickers...)}, nil
	}

	if len(pairs) >= 2 {
		kicker := bestExcluding(distinct, pairs[0], pairs[1])
		return HandRank{Category: TwoPair, Kickers: []int{pairs[0], pairs[1], kicker}}, nil
	}

	if len(pairs) == 1 {
		kickers := topExcluding(distinct, 3, pairs[0])
		return HandRank{Category: OnePair, Kickers: append([]int{pairs[0]}, kickers...)}, nil
	}

	n := len(distinct)
	if n > 5 {
		n = 5
	}
	return HandRank{Category: HighCard, Kickers: distinct[:n]}, nil
}

// Compare totally orders two hand ranks: negative when a < b, positive
// when a > b, zero on an exact tie. Missing kickers compare as 0.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	n := len(a.Kickers)
	if len(b.Kickers) > n {
		n = len(b.Kickers)
	}
	for i := 0; i < n; i++ {
		ka, kb := 0, 0
		if i < len(a.Kickers) {
			ka = a.Kickers[i]
		}
		if i < len(b.Kickers) {
			kb = b.Kickers[i]
		}
		if ka != kb {
			return ka - kb
		}
	}
	return 0
}

// straightHigh returns the high card of the best straight in the given
// ranks (descending, duplicates allowed), or 0 when there is none. The
// A-2-3-4-5 wheel counts with a high of 5.
func straightHigh(ranks []int) int {
	seen := make(map[int]bool, len(ranks))
	var uniq []int
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			uniq = append(uniq, r)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(uniq)))

	for i := 0; i+4 < len(uniq); i++ {
		if uniq[i]-uniq[i+4] == 4 {
			return uniq[i]
		}
	}

	if seen[14] && seen[5] && seen[4] && seen[3] && seen[2] {
		return 5
	}
	return 0
}

// bestExcluding returns the highest rank not in the excluded set, or 0.
func bestExcluding(distinct []int, exclude ...int) int {
	ks := topExcluding(distinct, 1, exclude...)
	if len(ks) == 0 {
		return 0
	}
	return ks[0]
}

// topExcluding returns up to n highest ranks not in the excluded set.
func topExcluding(distinct []int, n int, exclude ...int) []int {
	var out []int
	for _, r := range distinct {
		skip := false
		for _, ex := range exclude {
			if r == ex {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, r)
			if len(out) == n {
				break
			}
		}
	}
	return out
}
