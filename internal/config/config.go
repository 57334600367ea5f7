// Package config loads process bootstrap settings from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs outside the core engine:
// listen address, the shared admin secret, and the CORS origin the
// presentation layer is served from.
type Config struct {
	Port          string
	AdminPassword string
	CORSOrigin    string
}

// LoadFromEnv loads an optional .env file and then overlays process
// environment variables on top of defaults. Priority: ENV > .env > default.
func LoadFromEnv(envPath string) Config {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	return Config{
		Port:          getEnv("PORT", "8080"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "changeme"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
