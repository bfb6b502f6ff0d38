// Package config loads game configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of a game. All durations accept Go duration
// syntax ("60s", "500ms").
type Config struct {
	// Players is the total number of seats; the first HumanPlayers of them
	// take input from an external source, the rest run an automated
	// input generator.
	Players      int `env:"SETGAME_PLAYERS" envDefault:"4"`
	HumanPlayers int `env:"SETGAME_HUMAN_PLAYERS" envDefault:"0"`

	// TableSize is the number of layout slots.
	TableSize int `env:"SETGAME_TABLE_SIZE" envDefault:"12"`

	// MatchSize is the number of tokens that complete a candidate match.
	// It doubles as the number of values per card feature.
	MatchSize int `env:"SETGAME_MATCH_SIZE" envDefault:"3"`

	// Features is the number of independent features per card.
	// Deck size is MatchSize^Features.
	Features int `env:"SETGAME_FEATURES" envDefault:"4"`

	// TurnTimeout is how long the dealer waits for a claim before
	// reshuffling the whole layout. TurnWarning is the remaining time at
	// which the countdown display switches to warning mode.
	TurnTimeout time.Duration `env:"SETGAME_TURN_TIMEOUT" envDefault:"60s"`
	TurnWarning time.Duration `env:"SETGAME_TURN_WARNING" envDefault:"5s"`

	// PointFreeze and PenaltyFreeze are the per-player cooldowns applied
	// after a valid and an invalid claim respectively.
	PointFreeze   time.Duration `env:"SETGAME_POINT_FREEZE" envDefault:"1s"`
	PenaltyFreeze time.Duration `env:"SETGAME_PENALTY_FREEZE" envDefault:"3s"`

	// Hints enables the dealer's hint display after each replenish.
	Hints bool `env:"SETGAME_HINTS" envDefault:"false"`

	// Tick bounds the dealer's await poll so the countdown stays live.
	Tick time.Duration `env:"SETGAME_TICK" envDefault:"10ms"`

	// FreezeRecheck bounds how long a parked player sleeps between
	// freeze-expiry re-checks.
	FreezeRecheck time.Duration `env:"SETGAME_FREEZE_RECHECK" envDefault:"250ms"`

	// GeneratorIdle is how long an automated input generator parks when
	// its player cannot accept actions.
	GeneratorIdle time.Duration `env:"SETGAME_GENERATOR_IDLE" envDefault:"5ms"`

	// Seed makes runs reproducible; 0 means derive from the clock.
	Seed int64 `env:"SETGAME_SEED" envDefault:"0"`

	LogLevel string `env:"SETGAME_LOG_LEVEL" envDefault:"info"`
}

// DeckSize returns the derived deck size, MatchSize^Features.
func (c Config) DeckSize() int {
	n := 1
	for i := 0; i < c.Features; i++ {
		n *= c.MatchSize
	}
	return n
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch {
	case c.Players < 1:
		return fmt.Errorf("config: players must be >= 1, got %d", c.Players)
	case c.HumanPlayers < 0 || c.HumanPlayers > c.Players:
		return fmt.Errorf("config: human players %d out of range [0,%d]", c.HumanPlayers, c.Players)
	case c.TableSize < 1:
		return fmt.Errorf("config: table size must be >= 1, got %d", c.TableSize)
	case c.MatchSize < 2:
		return fmt.Errorf("config: match size must be >= 2, got %d", c.MatchSize)
	case c.MatchSize > c.TableSize:
		return fmt.Errorf("config: match size %d exceeds table size %d", c.MatchSize, c.TableSize)
	case c.Features < 1:
		return fmt.Errorf("config: features must be >= 1, got %d", c.Features)
	case c.DeckSize() < c.TableSize:
		return fmt.Errorf("config: deck size %d smaller than table size %d", c.DeckSize(), c.TableSize)
	case c.DeckSize() > 255:
		return fmt.Errorf("config: deck size %d exceeds card encoding range", c.DeckSize())
	case c.TurnTimeout <= 0:
		return fmt.Errorf("config: turn timeout must be positive, got %s", c.TurnTimeout)
	case c.Tick <= 0:
		return fmt.Errorf("config: tick must be positive, got %s", c.Tick)
	case c.FreezeRecheck <= 0:
		return fmt.Errorf("config: freeze recheck must be positive, got %s", c.FreezeRecheck)
	case c.GeneratorIdle <= 0:
		return fmt.Errorf("config: generator idle must be positive, got %s", c.GeneratorIdle)
	}
	return nil
}

// Load reads a .env file if one exists, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is fine

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		Players:       4,
		HumanPlayers:  0,
		TableSize:     12,
		MatchSize:     3,
		Features:      4,
		TurnTimeout:   60 * time.Second,
		TurnWarning:   5 * time.Second,
		PointFreeze:   time.Second,
		PenaltyFreeze: 3 * time.Second,
		Tick:          10 * time.Millisecond,
		FreezeRecheck: 250 * time.Millisecond,
		GeneratorIdle: 5 * time.Millisecond,
		LogLevel:      "info",
	}
}
