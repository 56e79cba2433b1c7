package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/homegame/holdem/internal/game"
	"github.com/homegame/holdem/internal/simulator"
)

type CLI struct {
	Hands         int   `short:"n" help:"Number of hands to simulate" default:"100"`
	Bots          int   `short:"b" help:"Number of bot seats" default:"4"`
	Seed          int64 `help:"RNG seed; 0 derives one from the clock" default:"0"`
	StartingChips int   `help:"Starting stack per seat" default:"1000"`
	SmallBlind    int   `help:"Small blind" default:"10"`
	BigBlind      int   `help:"Big blind" default:"20"`
	Verbose       bool  `short:"v" help:"Log every action"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("holdem-sim"),
		kong.Description("Plays bot-versus-bot hold'em hands and reports aggregate results"))

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	settings := game.Settings{
		StartingChips: cli.StartingChips,
		SmallBlind:    cli.SmallBlind,
		BigBlind:      cli.BigBlind,
		MaxPlayers:    10,
	}
	if err := settings.Validate(); err != nil {
		log.Fatal("Invalid table settings", "error", err)
	}
	if cli.Bots < 2 || cli.Bots > settings.MaxPlayers {
		log.Fatal("Bot count must be between 2 and 10", "bots", cli.Bots)
	}

	sim := simulator.New(simulator.Config{
		Hands:    cli.Hands,
		Bots:     cli.Bots,
		Seed:     seed,
		Settings: settings,
		Logger:   logger,
	})

	start := time.Now()
	results, err := sim.Run()
	if err != nil {
		log.Fatal("Simulation failed", "error", err)
	}

	fmt.Printf("simulated %d hands with %d bots in %s (seed %d)\n\n",
		results.HandsPlayed, cli.Bots, time.Since(start).Round(time.Millisecond), seed)
	fmt.Print(results.String())
	kctx.Exit(0)
}
