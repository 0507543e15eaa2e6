package session

import (
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

type Config struct {
	TTL       time.Duration `env:"SESSION_TTL" envDefault:"1h"`         // Access token validity window
	Retention time.Duration `env:"SESSION_RETENTION" envDefault:"720h"` // How long a refresh token stays redeemable
}

// LoadConfig parses session configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
