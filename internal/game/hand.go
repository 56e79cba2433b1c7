package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/homegame/holdem/internal/deck"
	"github.com/homegame/holdem/internal/evaluator"
)

// Hand runs one deal from blinds to pot award. Seats are shared with
// the owning Game so chip movements persist across hands. All mutation
// goes through Apply; callers serialize access (the Game's lock).
type Hand struct {
	Phase     Phase
	Seats     []*Seat // occupied seats with chips, ascending index
	Community []deck.Card
	Pot       int

	DealerPos     int // positions into Seats, not table indices
	SmallBlindPos int
	BigBlindPos   int
	ActingPos     int // -1 when no seat can act

	Complete    bool
	WinnerPos   int
	WinningRank evaluator.HandRank

	deck       *deck.Deck
	smallBlind int
	bigBlind   int
	bbOption   bool
	startTotal int
	log        *log.Logger
}

// newHand deals hole cards, posts blinds and sets the opening acting
// seat. dealerPos indexes seats; blinds follow clockwise from it, with
// the heads-up exception that the dealer posts the small blind.
func newHand(seats []*Seat, dealerPos, smallBlind, bigBlind int, rng *rand.Rand, logger *log.Logger) (*Hand, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 seats, got %d", ErrNotEnoughPlayers, len(seats))
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := &Hand{
		Phase:      Preflop,
		Seats:      seats,
		DealerPos:  dealerPos,
		WinnerPos:  -1,
		deck:       deck.NewShuffled(rng),
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		bbOption:   true,
		log:        logger,
	}

	for _, s := range seats {
		s.resetForHand()
		h.startTotal += s.Chips
	}

	n := len(seats)
	if n == 2 {
		h.SmallBlindPos = dealerPos
		h.BigBlindPos = (dealerPos + 1) % n
	} else {
		h.SmallBlindPos = (dealerPos + 1) % n
		h.BigBlindPos = (dealerPos + 2) % n
	}
	seats[dealerPos].Dealer = true
	seats[h.SmallBlindPos].SmallBlind = true
	seats[h.BigBlindPos].BigBlind = true

	for _, s := range seats {
		s.HoleCards = h.deck.DrawN(2)
	}

	h.Pot += seats[h.SmallBlindPos].commit(smallBlind)
	h.Pot += seats[h.BigBlindPos].commit(bigBlind)

	h.log.Debug("hand started",
		"dealer", seats[dealerPos].Index,
		"smallBlind", seats[h.SmallBlindPos].Index,
		"bigBlind", seats[h.BigBlindPos].Index,
		"pot", h.Pot)

	h.ActingPos = h.nextActive(h.BigBlindPos)
	if h.ActingPos == -1 || h.bettingComplete() {
		// Blinds put everyone all in; run the board out.
		h.advancePhase()
	}
	return h, nil
}

// MaxBet returns the highest current-round bet at the table.
func (h *Hand) MaxBet() int {
	max := 0
	for _, s := range h.Seats {
		if s.CurrentBet > max {
			max = s.CurrentBet
		}
	}
	return max
}

// CallAmount returns what the seat at pos owes to match the table bet.
func (h *Hand) CallAmount(pos int) int {
	return h.MaxBet() - h.Seats[pos].CurrentBet
}

// MinRaiseBy returns the minimum legal raise-by amount for the seat at
// pos. The committed total must reach at least the larger of the big
// blind and the call amount.
func (h *Hand) MinRaiseBy(pos int) int {
	call := h.CallAmount(pos)
	min := h.bigBlind
	if call > min {
		min = call
	}
	by := min - call
	if by < 1 {
		by = 1
	}
	return by
}

// nextActive returns the position of the first non-folded, non-all-in
// seat clockwise after from, or -1 when no seat can act. The scan wraps
// all the way around and checks from itself last.
func (h *Hand) nextActive(from int) int {
	n := len(h.Seats)
	for i := 1; i <= n; i++ {
		pos := (from + i) % n
		if h.Seats[pos].Active() {
			return pos
		}
	}
	return -1
}

// Apply validates and commits one action by the seat at pos. Rejected
// actions return ErrIllegalAction and leave state unchanged. A failed
// chip-conservation check returns ErrInvariantViolation and the hand
// must be abandoned.
func (h *Hand) Apply(pos int, action Action, raiseBy int) error {
	if h.Complete {
		return fmt.Errorf("%w: hand is over", ErrIllegalAction)
	}
	if pos < 0 || pos >= len(h.Seats) {
		return fmt.Errorf("%w: no such seat position %d", ErrIllegalAction, pos)
	}
	if pos != h.ActingPos {
		return fmt.Errorf("%w: not seat %d's turn", ErrIllegalAction, h.Seats[pos].Index)
	}

	seat := h.Seats[pos]
	maxBet := h.MaxBet()

	switch action {
	case Fold:
		seat.Folded = true

	case Check:
		if seat.CurrentBet != maxBet {
			return fmt.Errorf("%w: cannot check facing a bet of %d", ErrIllegalAction, maxBet)
		}

	case Call:
		if seat.CurrentBet >= maxBet {
			return fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		if seat.Chips == 0 {
			return fmt.Errorf("%w: no chips to call with", ErrIllegalAction)
		}
		h.Pot += seat.commit(maxBet - seat.CurrentBet)

	case Raise:
		if seat.Chips == 0 {
			return fmt.Errorf("%w: no chips to raise with", ErrIllegalAction)
		}
		if raiseBy <= 0 {
			return fmt.Errorf("%w: raise must be positive", ErrIllegalAction)
		}
		call := maxBet - seat.CurrentBet
		total := call + raiseBy
		min := h.bigBlind
		if call > min {
			min = call
		}
		// An all-in for less than the minimum is allowed; anything
		// else below the minimum is rejected.
		if total < min && total < seat.Chips {
			return fmt.Errorf("%w: raise total %d below minimum %d", ErrIllegalAction, total, min)
		}
		h.Pot += seat.commit(total)
		if seat.CurrentBet > maxBet {
			for _, other := range h.Seats {
				if other != seat && other.Active() {
					other.HasActed = false
				}
			}
		}

	default:
		return fmt.Errorf("%w: unknown action", ErrIllegalAction)
	}

	seat.HasActed = true
	if pos == h.BigBlindPos {
		h.bbOption = false
	}

	h.log.Debug("action applied",
		"seat", seat.Index,
		"action", action.String(),
		"bet", seat.CurrentBet,
		"pot", h.Pot,
		"phase", h.Phase.String())

	if err := h.checkConservation(); err != nil {
		return err
	}

	if h.countNonFolded() == 1 {
		h.awardUncontested()
		return nil
	}
	if h.bettingComplete() {
		h.advancePhase()
		return nil
	}
	h.ActingPos = h.nextActive(h.ActingPos)
	if h.ActingPos == -1 {
		h.advancePhase()
	}
	return nil
}

func (h *Hand) countNonFolded() int {
	n := 0
	for _, s := range h.Seats {
		if !s.Folded {
			n++
		}
	}
	return n
}

// bettingComplete reports whether the current round is settled: at most
// one seat can still act, or every seat that can act has acted and
// matched the table bet. The big blind keeps its preflop option even
// when the forced blind already matches.
func (h *Hand) bettingComplete() bool {
	if h.Phase == Preflop && h.bbOption && h.Seats[h.BigBlindPos].Active() {
		return false
	}
	active := 0
	for _, s := range h.Seats {
		if s.Active() {
			active++
		}
	}
	if active <= 1 {
		return true
	}
	maxBet := h.MaxBet()
	for _, s := range h.Seats {
		if s.Active() && (!s.HasActed || s.CurrentBet != maxBet) {
			return false
		}
	}
	return true
}

// advancePhase deals the next street, resets round state and hands the
// action to the first active seat after the dealer. When nobody can act
// it keeps dealing until the river and resolves the showdown.
func (h *Hand) advancePhase() {
	for {
		for _, s := range h.Seats {
			s.CurrentBet = 0
			s.HasActed = false
		}
		h.bbOption = false

		switch h.Phase {
		case Preflop:
			h.deck.Burn()
			h.Community = append(h.Community, h.deck.DrawN(3)...)
			h.Phase = Flop
		case Flop:
			h.deck.Burn()
			h.Community = append(h.Community, h.deck.DrawN(1)...)
			h.Phase = Turn
		case Turn:
			h.deck.Burn()
			h.Community = append(h.Community, h.deck.DrawN(1)...)
			h.Phase = River
		case River:
			h.resolveShowdown()
			return
		}

		h.log.Debug("phase advanced", "phase", h.Phase.String(), "community", fmt.Sprint(h.Community))

		h.ActingPos = h.nextActive(h.DealerPos)
		if h.ActingPos != -1 {
			return
		}
	}
}

// awardUncontested gives the pot to the last seat standing without a
// hand comparison.
func (h *Hand) awardUncontested() {
	for pos, s := range h.Seats {
		if !s.Folded {
			h.award(pos, evaluator.HandRank{})
			return
		}
	}
}

// resolveShowdown evaluates every non-folded seat's best hand over hole
// plus community cards and awards the pot to the strongest. Exact ties
// go to the earliest tied seat in seat order.
func (h *Hand) resolveShowdown() {
	bestPos := -1
	var bestRank evaluator.HandRank
	for pos, s := range h.Seats {
		if s.Folded {
			continue
		}
		cards := make([]deck.Card, 0, len(s.HoleCards)+len(h.Community))
		cards = append(cards, s.HoleCards...)
		cards = append(cards, h.Community...)
		rank, err := evaluator.Evaluate(cards)
		if err != nil {
			// Short boards cannot happen once the river is dealt.
			h.log.Error("showdown evaluation failed", "seat", s.Index, "err", err)
			continue
		}
		h.log.Debug("showdown hand", "seat", s.Index, "rank", rank.String(), "kickers", fmt.Sprint(rank.Kickers))
		if bestPos == -1 || evaluator.Compare(rank, bestRank) > 0 {
			bestPos, bestRank = pos, rank
		}
	}
	if bestPos == -1 {
		bestPos = 0
	}
	h.award(bestPos, bestRank)
}

func (h *Hand) award(pos int, rank evaluator.HandRank) {
	winner := h.Seats[pos]
	winner.Chips += h.Pot
	h.log.Info("pot awarded",
		"seat", winner.Index,
		"name", winner.Name,
		"amount", h.Pot,
		"rank", rank.String())
	h.Pot = 0
	h.Phase = Showdown
	h.ActingPos = -1
	h.WinnerPos = pos
	h.WinningRank = rank
	h.Complete = true
}

// checkConservation verifies that chips plus pot still sum to the
// stacks present at the deal. A mismatch means state was mutated
// outside the action API.
func (h *Hand) checkConservation() error {
	total := h.Pot
	for _, s := range h.Seats {
		total += s.Chips
	}
	if total != h.startTotal {
		return fmt.Errorf("%w: chips+pot=%d, expected %d", ErrInvariantViolation, total, h.startTotal)
	}
	return nil
}
