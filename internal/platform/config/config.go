package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server captures the process configuration so main stays lean.
type Server struct {
	// Addr is the listen address for the HTTP layer.
	Addr string `env:"RAFFLE_ADDR" envDefault:":8080"`
	// Operator is the single identity allowed to draw winners and reset.
	Operator string `env:"RAFFLE_OPERATOR,required"`
	// MaxNumber bounds the allocation pool to [1, MaxNumber].
	MaxNumber int `env:"RAFFLE_MAX_NUMBER" envDefault:"100"`
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxNumber <= 0 {
		return Server{}, fmt.Errorf("RAFFLE_MAX_NUMBER must be positive, got %d", cfg.MaxNumber)
	}
	return cfg, nil
}
