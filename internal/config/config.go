package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process configuration, sourced from the environment.
type Config struct {
	Port          string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	BlobDir       string `env:"BLOB_DIR" envDefault:"data/blobs"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"/media"`
	WebDir        string `env:"WEB_DIR" envDefault:"web"`
}

// Load reads an optional .env file and then parses the environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
