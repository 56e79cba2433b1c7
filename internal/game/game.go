package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
)

// Status is the lifecycle state of a table.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Settings are the fixed table parameters chosen at creation.
type Settings struct {
	StartingChips int `json:"startingChips"`
	SmallBlind    int `json:"smallBlind"`
	BigBlind      int `json:"bigBlind"`
	MaxPlayers    int `json:"maxPlayers"`
}

// DefaultSettings returns the standard home-game table.
func DefaultSettings() Settings {
	return Settings{
		StartingChips: 1000,
		SmallBlind:    10,
		BigBlind:      20,
		MaxPlayers:    10,
	}
}

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if s.MaxPlayers < 2 || s.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10, got %d", s.MaxPlayers)
	}
	if s.SmallBlind < 1 || s.BigBlind < s.SmallBlind {
		return fmt.Errorf("blinds %d/%d are invalid", s.SmallBlind, s.BigBlind)
	}
	if s.StartingChips < s.BigBlind {
		return fmt.Errorf("starting chips %d cannot cover the big blind %d", s.StartingChips, s.BigBlind)
	}
	return nil
}

// Game is one table: persistent seats, the hand in progress and the
// rotation state between hands. All methods serialize on an internal
// lock; exactly one action mutates the table at a time.
type Game struct {
	mu sync.Mutex

	id        string
	organizer string
	settings  Settings
	status    Status

	seats      []*Seat // ascending index, occupied only
	hand       *Hand
	dealerSeat int // table index of the last dealer, -1 before any hand
	handNum    int

	rng *rand.Rand
	log *log.Logger
}

// New creates an empty table. The organizer name gates StartHand and
// the other organizer-only operations; it does not occupy a seat until
// Join is called.
func New(id, organizer string, settings Settings, rng *rand.Rand, logger *log.Logger) (*Game, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Game{
		id:         id,
		organizer:  organizer,
		settings:   settings,
		status:     StatusWaiting,
		dealerSeat: -1,
		rng:        rng,
		log:        logger.With("game", id),
	}, nil
}

// ID returns the table identifier.
func (g *Game) ID() string { return g.id }

// Organizer returns the name that holds organizer rights.
func (g *Game) Organizer() string { return g.organizer }

// Settings returns the table parameters.
func (g *Game) Settings() Settings { return g.settings }

// Join seats a new player at the lowest free seat with the starting
// stack and returns the seat index.
func (g *Game) Join(name string, bot bool) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == StatusCompleted {
		return 0, fmt.Errorf("%w: game is over", ErrIllegalAction)
	}
	if len(g.seats) >= g.settings.MaxPlayers {
		return 0, fmt.Errorf("%w: table is full", ErrIllegalAction)
	}
	for _, s := range g.seats {
		if s.Name == name {
			return 0, fmt.Errorf("%w: %q is already seated", ErrIllegalAction, name)
		}
	}

	index := 0
	for _, s := range g.seats {
		if s.Index != index {
			break
		}
		index++
	}
	seat := &Seat{
		Index: index,
		Name:  name,
		Chips: g.settings.StartingChips,
		Bot:   bot,
	}

	// Keep the slice ordered by seat index.
	at := len(g.seats)
	for i, s := range g.seats {
		if s.Index > index {
			at = i
			break
		}
	}
	g.seats = append(g.seats, nil)
	copy(g.seats[at+1:], g.seats[at:])
	g.seats[at] = seat

	g.log.Info("player joined", "name", name, "seat", index, "bot", bot)
	return index, nil
}

// Leave removes a seated player. Not permitted while the seat is in an
// unfinished hand; fold first.
func (g *Game) Leave(seatIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handInProgress() {
		for _, s := range g.hand.Seats {
			if s.Index == seatIndex && !s.Folded {
				return fmt.Errorf("%w: seat %d is in a live hand", ErrIllegalAction, seatIndex)
			}
		}
	}
	for i, s := range g.seats {
		if s.Index == seatIndex {
			g.seats = append(g.seats[:i], g.seats[i+1:]...)
			g.log.Info("player left", "name", s.Name, "seat", seatIndex)
			return nil
		}
	}
	return fmt.Errorf("%w: seat %d is empty", ErrIllegalAction, seatIndex)
}

// AddBot seats an autonomous player. Organizer only.
func (g *Game) AddBot(caller, name string) (int, error) {
	if err := g.requireOrganizer(caller); err != nil {
		return 0, err
	}
	return g.Join(name, true)
}

// StartHand deals the next hand: rotates the dealer to the next seat
// with chips, posts blinds and opens the action left of the big blind.
// Organizer only.
func (g *Game) StartHand(caller string) error {
	if err := g.requireOrganizer(caller); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.status {
	case StatusPaused:
		return fmt.Errorf("%w: game is paused", ErrIllegalAction)
	case StatusCompleted:
		return fmt.Errorf("%w: game is over", ErrIllegalAction)
	}
	if g.handInProgress() {
		return fmt.Errorf("%w: a hand is already in progress", ErrIllegalAction)
	}

	for _, s := range g.seats {
		s.resetForHand()
	}

	var ring []*Seat
	for _, s := range g.seats {
		if s.Chips > 0 {
			ring = append(ring, s)
		}
	}
	if len(ring) < 2 {
		return fmt.Errorf("%w: need 2 seats with chips, have %d", ErrNotEnoughPlayers, len(ring))
	}

	dealerPos := 0
	for i, s := range ring {
		if s.Index > g.dealerSeat {
			dealerPos = i
			break
		}
	}

	hand, err := newHand(ring, dealerPos, g.settings.SmallBlind, g.settings.BigBlind, g.rng, g.log)
	if err != nil {
		return err
	}
	g.hand = hand
	g.dealerSeat = ring[dealerPos].Index
	g.handNum++
	g.status = StatusActive
	return nil
}

// Act applies one betting action for the given table seat. This is the
// single entry point for humans and bots alike.
func (g *Game) Act(seatIndex int, action Action, raiseBy int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == StatusPaused {
		return fmt.Errorf("%w: game is paused", ErrIllegalAction)
	}
	if !g.handInProgress() {
		return fmt.Errorf("%w: no hand in progress", ErrIllegalAction)
	}
	for pos, s := range g.hand.Seats {
		if s.Index == seatIndex {
			return g.hand.Apply(pos, action, raiseBy)
		}
	}
	return fmt.Errorf("%w: seat %d is not in this hand", ErrIllegalAction, seatIndex)
}

// TopUp adds chips to a seat between hands. Organizer only. This is the
// one sanctioned way chips enter the table mid-game.
func (g *Game) TopUp(caller string, seatIndex, amount int) error {
	if err := g.requireOrganizer(caller); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("%w: top-up must be positive", ErrIllegalAction)
	}
	if g.handInProgress() {
		return fmt.Errorf("%w: cannot top up during a hand", ErrIllegalAction)
	}
	for _, s := range g.seats {
		if s.Index == seatIndex {
			s.Chips += amount
			g.log.Info("chips topped up", "seat", seatIndex, "amount", amount)
			return nil
		}
	}
	return fmt.Errorf("%w: seat %d is empty", ErrIllegalAction, seatIndex)
}

// Pause stops new actions until Resume. Organizer only.
func (g *Game) Pause(caller string) error {
	if err := g.requireOrganizer(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == StatusCompleted {
		return fmt.Errorf("%w: game is over", ErrIllegalAction)
	}
	g.status = StatusPaused
	return nil
}

// Resume reopens a paused game. Organizer only.
func (g *Game) Resume(caller string) error {
	if err := g.requireOrganizer(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusPaused {
		return fmt.Errorf("%w: game is not paused", ErrIllegalAction)
	}
	if g.handInProgress() {
		g.status = StatusActive
	} else {
		g.status = StatusWaiting
	}
	return nil
}

// End closes the table permanently. Organizer only.
func (g *Game) End(caller string) error {
	if err := g.requireOrganizer(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = StatusCompleted
	return nil
}

// HandInProgress reports whether an unfinished hand exists.
func (g *Game) HandInProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handInProgress()
}

func (g *Game) handInProgress() bool {
	return g.hand != nil && !g.hand.Complete
}

// ActingSeat returns the table index of the seat whose turn it is, or
// -1 when no action is pending.
func (g *Game) ActingSeat() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.handInProgress() || g.hand.ActingPos == -1 {
		return -1
	}
	return g.hand.Seats[g.hand.ActingPos].Index
}

// SeatByName returns the table index for a player name.
func (g *Game) SeatByName(name string) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range g.seats {
		if s.Name == name {
			return s.Index, true
		}
	}
	return 0, false
}

func (g *Game) requireOrganizer(caller string) error {
	if caller != g.organizer {
		return fmt.Errorf("%w: %q is not the organizer", ErrUnauthorized, caller)
	}
	return nil
}
