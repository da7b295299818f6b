package server

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is the server environment. Values come from the process
// environment, optionally seeded from a .env file.
type Config struct {
	Addr        string
	Adapter     string // "fs" or "postgres"
	VaultPath   string
	PostgresURL string
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first if present.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getenv("VERDANT_ADDR", ":8080"),
		Adapter:     getenv("VERDANT_ADAPTER", "fs"),
		VaultPath:   getenv("VERDANT_VAULT", "./essays"),
		PostgresURL: os.Getenv("VERDANT_POSTGRES_URL"),
	}
	return cfg
}

// Validate checks that the selected adapter has what it needs.
func (c Config) Validate() error {
	switch c.Adapter {
	case "fs":
		if c.VaultPath == "" {
			return fmt.Errorf("VERDANT_VAULT is required for the fs adapter")
		}
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("VERDANT_POSTGRES_URL is required for the postgres adapter")
		}
	default:
		return fmt.Errorf("unknown adapter %q", c.Adapter)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
