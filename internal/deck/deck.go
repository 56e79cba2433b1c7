package deck

import rand "math/rand/v2"

// Size is the number of cards in a full deck.
const Size = 52

// Deck represents a standard 52-card deck consumed from the front.
// Cards that are dealt or burned are removed and never reappear within
// the same hand.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full deck in canonical order with an explicit RNG.
// Call Shuffle before dealing.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewShuffled creates a freshly shuffled deck.
func NewShuffled(rng *rand.Rand) *Deck {
	d := New(rng)
	d.Shuffle()
	return d
}

// Shuffle randomizes the deck order using Fisher-Yates.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card. ok is false when the deck is
// empty, which is unreachable in a correctly sized hold'em game
// (10 players + 5 community + 3 burns = 28 cards).
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DrawN draws n cards from the top of the deck.
func (d *Deck) DrawN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		if card, ok := d.Draw(); ok {
			cards = append(cards, card)
		}
	}
	return cards
}

// Burn discards the top card before a community deal.
func (d *Deck) Burn() {
	d.Draw()
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, top of the deck first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Restore rebuilds a deck from a previously captured card sequence, used
// when resuming a hand from a snapshot.
func Restore(cards []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, len(cards)),
		rng:   rng,
	}
	copy(d.cards, cards)
	return d
}
