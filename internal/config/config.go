// internal/config/config.go
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process-level settings, populated from the environment.
// A .env file is loaded by godotenv/autoload in main before parsing.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// RoundCooldown is the pause between a resolved round and the next.
	RoundCooldown time.Duration `env:"ROUND_COOLDOWN" envDefault:"2s"`
	// WinScore is the score at which a player wins the overall game.
	WinScore int `env:"WIN_SCORE" envDefault:"3"`
	// CardMax is the top of the drawable card range [1, CardMax].
	CardMax int `env:"CARD_MAX" envDefault:"10"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
