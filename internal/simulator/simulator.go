// Package simulator plays bot-versus-bot hands synchronously, without
// a server or think delays, to exercise the whole engine and report
// aggregate outcomes.
package simulator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/homegame/holdem/internal/bot"
	"github.com/homegame/holdem/internal/game"
	"github.com/homegame/holdem/internal/gameid"
	"github.com/homegame/holdem/internal/randutil"
)

const organizer = "sim"

// Config holds the simulation parameters.
type Config struct {
	Hands    int
	Bots     int
	Seed     int64
	Settings game.Settings
	Logger   *log.Logger
}

// Results aggregates the outcome of a run.
type Results struct {
	HandsPlayed     int
	ShowdownWins    int
	UncontestedWins int
	Rebuys          int
	WinsBySeat      map[int]int
	ChipsBySeat     map[int]int
	CategoryCounts  map[string]int
}

// Simulator plays hands until the configured count is reached. Busted
// seats are topped back up between hands so the table never shrinks.
type Simulator struct {
	config Config
}

// New creates a simulator.
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run executes the simulation.
func (s *Simulator) Run() (*Results, error) {
	cfg := s.config
	g, err := game.New(gameid.New(), organizer, cfg.Settings, randutil.New(cfg.Seed), cfg.Logger)
	if err != nil {
		return nil, err
	}
	for i := 0; i < cfg.Bots; i++ {
		if _, err := g.AddBot(organizer, fmt.Sprintf("bot-%d", i+1)); err != nil {
			return nil, err
		}
	}

	decisionRNG := randutil.New(cfg.Seed + 1)
	results := &Results{
		WinsBySeat:     make(map[int]int),
		ChipsBySeat:    make(map[int]int),
		CategoryCounts: make(map[string]int),
	}

	expectedTotal := cfg.Bots * cfg.Settings.StartingChips

	for hand := 0; hand < cfg.Hands; hand++ {
		// Rebuy busted seats so every hand has a full table.
		for _, seat := range g.Snapshot().Seats {
			if seat.Chips == 0 {
				if err := g.TopUp(organizer, seat.Index, cfg.Settings.StartingChips); err != nil {
					return nil, err
				}
				expectedTotal += cfg.Settings.StartingChips
				results.Rebuys++
			}
		}

		if err := g.StartHand(organizer); err != nil {
			return nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}

		for steps := 0; g.HandInProgress(); steps++ {
			if steps > 1000 {
				return nil, fmt.Errorf("hand %d: no progress after %d actions", hand+1, steps)
			}
			acting := g.ActingSeat()
			view, ok := bot.ViewFromSnapshot(g.Snapshot(), acting)
			if !ok {
				return nil, fmt.Errorf("hand %d: no view for acting seat %d", hand+1, acting)
			}
			d := bot.Decide(view, decisionRNG)
			if err := g.Act(acting, d.Action, d.RaiseBy); err != nil {
				return nil, fmt.Errorf("hand %d seat %d %s: %w", hand+1, acting, d.Action, err)
			}
		}

		snap := g.Snapshot()
		results.HandsPlayed++
		results.WinsBySeat[snap.Hand.WinnerSeat]++
		if snap.Hand.WinningRank != nil {
			results.ShowdownWins++
			results.CategoryCounts[snap.Hand.WinningRank.String()]++
		} else {
			results.UncontestedWins++
		}

		total := 0
		for _, seat := range snap.Seats {
			total += seat.Chips
		}
		if total != expectedTotal {
			return nil, fmt.Errorf("%w: %d chips on the table, expected %d",
				game.ErrInvariantViolation, total, expectedTotal)
		}
	}

	for _, seat := range g.Snapshot().Seats {
		results.ChipsBySeat[seat.Index] = seat.Chips
	}
	return results, nil
}

// String formats the results as a small report.
func (r *Results) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hands played:      %d\n", r.HandsPlayed)
	fmt.Fprintf(&b, "showdown wins:     %d\n", r.ShowdownWins)
	fmt.Fprintf(&b, "uncontested wins:  %d\n", r.UncontestedWins)
	fmt.Fprintf(&b, "rebuys:            %d\n", r.Rebuys)

	seats := make([]int, 0, len(r.ChipsBySeat))
	for seat := range r.ChipsBySeat {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	b.WriteString("seats:\n")
	for _, seat := range seats {
		fmt.Fprintf(&b, "  seat %d: %d chips, %d wins\n", seat, r.ChipsBySeat[seat], r.WinsBySeat[seat])
	}

	if len(r.CategoryCounts) > 0 {
		cats := make([]string, 0, len(r.CategoryCounts))
		for c := range r.CategoryCounts {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		b.WriteString("winning hands:\n")
		for _, c := range cats {
			fmt.Fprintf(&b, "  %-16s %d\n", c, r.CategoryCounts[c])
		}
	}
	return b.String()
}
