package passreset

import (
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

type Config struct {
	CodeTTL    time.Duration `env:"PASSWORD_RESET_CODE_TTL" envDefault:"1h"` // How long a possession token stays redeemable
	BcryptCost int           `env:"PASSWORD_RESET_BCRYPT_COST" envDefault:"10"`
}

// LoadConfig parses reset flow configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
