package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries read from the environment.
type Config struct {
	ServerURL string
	Username  string
	LogLevel  string
	Port      string
}

// Load reads .env if present, then the environment, with sensible local
// defaults. Username is only required by the client binary, so it is
// validated there rather than here.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerURL: getEnv("SERVER_URL", "http://localhost:8080"),
		Username:  getEnv("DUEL_USERNAME", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Port:      getEnv("PORT", "8080"),
	}

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("SERVER_URL must not be empty")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
