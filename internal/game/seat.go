package game

import "github.com/homegame/holdem/internal/deck"

// Seat is one occupied position at the table. Chips persist across
// hands; the per-hand fields are reset by each new deal.
type Seat struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Chips int    `json:"chips"`
	Bot   bool   `json:"bot,omitempty"`

	HoleCards  []deck.Card `json:"holeCards,omitempty"`
	CurrentBet int         `json:"currentBet"`
	Folded     bool        `json:"folded"`
	AllIn      bool        `json:"allIn"`
	HasActed   bool        `json:"hasActed"`
	Dealer     bool        `json:"dealer"`
	SmallBlind bool        `json:"smallBlind"`
	BigBlind   bool        `json:"bigBlind"`
}

// Active reports whether the seat can still act this round.
func (s *Seat) Active() bool {
	return !s.Folded && !s.AllIn
}

func (s *Seat) resetForHand() {
	s.HoleCards = nil
	s.CurrentBet = 0
	s.Folded = false
	s.AllIn = false
	s.HasActed = false
	s.Dealer = false
	s.SmallBlind = false
	s.BigBlind = false
}

// commit moves up to amount chips from the seat's stack into its
// current-round bet, clamping at the stack. Returns the amount actually
// committed. A seat that empties its stack is all in.
func (s *Seat) commit(amount int) int {
	if amount > s.Chips {
		amount = s.Chips
	}
	s.Chips -= amount
	s.CurrentBet += amount
	if s.Chips == 0 {
		s.AllIn = true
	}
	return amount
}
