package stub

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the stub server configuration, loaded from the environment.
type Config struct {
	Addr     string `env:"STUB_ADDR" envDefault:":8090"`
	DBPath   string `env:"STUB_DB_PATH" envDefault:"stub-pages.db"`
	SeedPath string `env:"STUB_SEED_PATH"`
	APIToken string `env:"STUB_API_TOKEN"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
