package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/homegame/holdem/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server Settings     `hcl:"server,block"`
	Games  []GameConfig `hcl:"game,block"`
}

// Settings contains server-level configuration.
type Settings struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	LogFile    string `hcl:"log_file,optional"`
	BotThinkMS int    `hcl:"bot_think_ms,optional"`
}

// GameConfig defines one table to host at startup.
type GameConfig struct {
	Name          string `hcl:"name,label"`
	Organizer     string `hcl:"organizer"`
	StartingChips int    `hcl:"starting_chips,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	Bots          int    `hcl:"bots,optional"`
}

// DefaultConfig returns the configuration used when no file exists: one
// table with standard home-game stakes.
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:    "localhost",
			Port:       8080,
			LogLevel:   "info",
			LogFile:    "holdem-server.log",
			BotThinkMS: 1500,
		},
		Games: []GameConfig{
			{
				Name:          "main",
				Organizer:     "host",
				StartingChips: 1000,
				SmallBlind:    10,
				BigBlind:      20,
				MaxPlayers:    10,
			},
		},
	}
}

// LoadConfig loads server configuration from an HCL file, falling back
// to defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "holdem-server.log"
	}
	if config.Server.BotThinkMS == 0 {
		config.Server.BotThinkMS = 1500
	}

	defaults := game.DefaultSettings()
	for i := range config.Games {
		if config.Games[i].StartingChips == 0 {
			config.Games[i].StartingChips = defaults.StartingChips
		}
		if config.Games[i].SmallBlind == 0 {
			config.Games[i].SmallBlind = defaults.SmallBlind
		}
		if config.Games[i].BigBlind == 0 {
			config.Games[i].BigBlind = config.Games[i].SmallBlind * 2
		}
		if config.Games[i].MaxPlayers == 0 {
			config.Games[i].MaxPlayers = defaults.MaxPlayers
		}
	}

	return &config, nil
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.BotThinkMS < 0 {
		return fmt.Errorf("bot think delay cannot be negative")
	}
	if len(c.Games) == 0 {
		return fmt.Errorf("at least one game must be configured")
	}

	for _, gc := range c.Games {
		if gc.Organizer == "" {
			return fmt.Errorf("game %s: organizer is required", gc.Name)
		}
		if gc.Bots < 0 || gc.Bots > gc.MaxPlayers {
			return fmt.Errorf("game %s: bot count %d out of range", gc.Name, gc.Bots)
		}
		if err := gc.Settings().Validate(); err != nil {
			return fmt.Errorf("game %s: %w", gc.Name, err)
		}
	}
	return nil
}

// Settings converts the game block into engine settings.
func (gc GameConfig) Settings() game.Settings {
	return game.Settings{
		StartingChips: gc.StartingChips,
		SmallBlind:    gc.SmallBlind,
		BigBlind:      gc.BigBlind,
		MaxPlayers:    gc.MaxPlayers,
	}
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
