package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/homegame/holdem/internal/server"
)

type CLI struct {
	Config string `short:"c" help:"Path to the HCL configuration file" default:"holdem.hcl"`
	Seed   int64  `help:"RNG seed; 0 derives one from the clock" default:"0"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("holdem-server"),
		kong.Description("Texas Hold'em home-game table server"))

	cfg, err := server.LoadConfig(cli.Config)
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatal("Failed to set up logging", "error", err)
	}
	defer closeLog()

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	srv, err := server.New(cfg, logger, nil, seed)
	if err != nil {
		log.Fatal("Failed to create server", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("Shutting down")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	kctx.Exit(0)
}

// newLogger builds the server logger: a file from the config, or
// stderr when the log file is "-".
func newLogger(cfg *server.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Server.LogLevel, err)
	}

	out := os.Stderr
	closeLog := func() {}
	if cfg.Server.LogFile != "-" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeLog = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	return logger, closeLog, nil
}
