package game

import (
	"github.com/homegame/holdem/internal/deck"
	"github.com/homegame/holdem/internal/evaluator"
)

// Snapshot is a full, detached copy of a table's externally visible
// state. It is what the store persists and what the server serializes
// to clients (after per-viewer redaction of hole cards).
type Snapshot struct {
	ID        string    `json:"id"`
	Organizer string    `json:"organizer"`
	Settings  Settings  `json:"settings"`
	Status    Status    `json:"status"`
	HandNum   int       `json:"handNum"`
	Seats     []Seat    `json:"seats"`
	Hand      *HandView `json:"hand,omitempty"`
}

// HandView is the hand-level slice of a Snapshot. Seat references are
// table indices; -1 means none.
type HandView struct {
	Phase       Phase               `json:"phase"`
	Community   []deck.Card         `json:"community"`
	Pot         int                 `json:"pot"`
	DealerSeat  int                 `json:"dealerSeat"`
	SmallBlind  int                 `json:"smallBlindSeat"`
	BigBlind    int                 `json:"bigBlindSeat"`
	ActingSeat  int                 `json:"actingSeat"`
	Complete    bool                `json:"complete"`
	WinnerSeat  int                 `json:"winnerSeat"`
	WinningRank *evaluator.HandRank `json:"winningRank,omitempty"`
}

// Snapshot captures the current table state under the game lock.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		ID:        g.id,
		Organizer: g.organizer,
		Settings:  g.settings,
		Status:    g.status,
		HandNum:   g.handNum,
		Seats:     make([]Seat, 0, len(g.seats)),
	}
	for _, s := range g.seats {
		copied := *s
		copied.HoleCards = append([]deck.Card(nil), s.HoleCards...)
		snap.Seats = append(snap.Seats, copied)
	}

	if g.hand != nil {
		h := g.hand
		hv := &HandView{
			Phase:      h.Phase,
			Community:  append([]deck.Card(nil), h.Community...),
			Pot:        h.Pot,
			DealerSeat: h.Seats[h.DealerPos].Index,
			SmallBlind: h.Seats[h.SmallBlindPos].Index,
			BigBlind:   h.Seats[h.BigBlindPos].Index,
			ActingSeat: -1,
			Complete:   h.Complete,
			WinnerSeat: -1,
		}
		if h.ActingPos != -1 {
			hv.ActingSeat = h.Seats[h.ActingPos].Index
		}
		if h.WinnerPos != -1 {
			hv.WinnerSeat = h.Seats[h.WinnerPos].Index
		}
		if h.Complete && h.WinningRank.Category != 0 {
			rank := h.WinningRank
			hv.WinningRank = &rank
		}
		snap.Hand = hv
	}
	return snap
}

// Redacted returns a copy of the snapshot with every seat's hole cards
// hidden except the viewer's own. Completed hands reveal all surviving
// hole cards, matching a live showdown.
func (s Snapshot) Redacted(viewerSeat int) Snapshot {
	out := s
	out.Seats = make([]Seat, len(s.Seats))
	copy(out.Seats, s.Seats)

	showdown := s.Hand != nil && s.Hand.Complete
	for i := range out.Seats {
		seat := &out.Seats[i]
		if seat.Index == viewerSeat {
			continue
		}
		if showdown && !seat.Folded {
			continue
		}
		seat.HoleCards = nil
	}
	return out
}
