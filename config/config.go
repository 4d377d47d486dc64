// Package config loads server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath     string
	ServerPort       string
	AllowedOrigins   []string
	RolloverInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present; real environment variables
// win over it.
func Load() *Config {
	// Missing .env is fine; env vars alone are a valid configuration.
	_ = godotenv.Load()

	return &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "worktime.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		RolloverInterval: getDuration("ROLLOVER_INTERVAL", 1*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
