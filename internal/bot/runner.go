package bot

import (
	"errors"
	"io"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/homegame/holdem/internal/game"
)

// ChatFunc publishes a bot's flavor line to the chat sideband.
type ChatFunc func(seat int, message string)

// Runner drives the bot seats of one table. Whenever the acting seat is
// a bot it schedules a decision after a think delay on the injected
// clock; tests advance a mock clock instead of sleeping. The decision
// is rechecked against live state when the timer fires and silently
// discarded if the game has moved on.
type Runner struct {
	game  *game.Game
	clock quartz.Clock
	delay time.Duration
	log   *log.Logger

	chat  ChatFunc
	onAct func()

	mu      sync.Mutex
	rng     *rand.Rand
	pending *quartz.Timer
}

// NewRunner creates a runner for the table. A nil clock uses real time.
func NewRunner(g *game.Game, clock quartz.Clock, delay time.Duration, rng *rand.Rand, logger *log.Logger) *Runner {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		game:  g,
		clock: clock,
		delay: delay,
		rng:   rng,
		log:   logger.WithPrefix("bot"),
	}
}

// SetChat installs the chat sideband. Optional.
func (r *Runner) SetChat(f ChatFunc) { r.chat = f }

// SetOnAct installs a callback invoked after every committed bot
// action, before the next one is scheduled. The server uses it to
// broadcast the new state.
func (r *Runner) SetOnAct(f func()) { r.onAct = f }

// Schedule looks at the table and, if a bot is on the clock, queues its
// decision after the think delay. Calling again replaces any queued
// decision. Safe to call after every state change.
func (r *Runner) Schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}

	snap := r.game.Snapshot()
	if snap.Status != game.StatusActive || snap.Hand == nil || snap.Hand.Complete {
		return
	}
	acting := snap.Hand.ActingSeat
	if acting == -1 {
		return
	}
	view, ok := ViewFromSnapshot(snap, acting)
	if !ok || !view.botSeat {
		return
	}

	decision := Decide(view, r.rng)
	r.log.Debug("decision queued",
		"seat", acting,
		"action", decision.Action.String(),
		"raiseBy", decision.RaiseBy)

	r.pending = r.clock.AfterFunc(r.delay, func() {
		r.fire(acting, decision)
	})
}

// Stop cancels any queued decision.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}

// fire applies a queued decision if the seat is still on the clock.
func (r *Runner) fire(seat int, d Decision) {
	if r.game.ActingSeat() != seat {
		r.log.Debug("stale decision discarded", "seat", seat)
		return
	}
	if err := r.game.Act(seat, d.Action, d.RaiseBy); err != nil {
		if errors.Is(err, game.ErrIllegalAction) {
			r.log.Debug("decision no longer legal, discarded", "seat", seat, "err", err)
			return
		}
		r.log.Error("bot action failed", "seat", seat, "err", err)
		return
	}
	if d.Chat != "" && r.chat != nil {
		r.chat(seat, d.Chat)
	}
	if r.onAct != nil {
		r.onAct()
	}
	r.Schedule()
}

// ViewFromSnapshot projects a snapshot into the decision view for one
// seat. ok is false when the seat is absent or no hand is running.
func ViewFromSnapshot(snap game.Snapshot, seatIndex int) (View, bool) {
	if snap.Hand == nil {
		return View{}, false
	}
	var seat *game.Seat
	maxBet := 0
	active := 0
	for i, s := range snap.Seats {
		if s.Index == seatIndex {
			seat = &snap.Seats[i]
		}
		if s.CurrentBet > maxBet {
			maxBet = s.CurrentBet
		}
		// Seats without hole cards sat this hand out.
		if len(s.HoleCards) == 2 && !s.Folded && !s.AllIn {
			active++
		}
	}
	if seat == nil {
		return View{}, false
	}
	return View{
		HoleCards:      seat.HoleCards,
		Chips:          seat.Chips,
		CurrentBet:     seat.CurrentBet,
		MaxBet:         maxBet,
		Pot:            snap.Hand.Pot,
		BigBlind:       snap.Settings.BigBlind,
		Preflop:        snap.Hand.Phase == game.Preflop,
		SmallBlindSeat: seat.SmallBlind,
		BigBlindSeat:   seat.BigBlind,
		ActiveSeats:    active,
		botSeat:        seat.Bot,
	}, true
}
