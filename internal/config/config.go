// Package config centralises environment configuration for the iform server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the secrets and environment-driven settings the server
// needs. Runtime knobs (address, db path, static dir) come from CLI flags
// instead, see internal/cmd.
type Config struct {
	StravaClientID     string
	StravaClientSecret string
	RedirectURI        string
	GoogleAPIKey       string
	GeminiModel        string
	GithubURL          string
	SessionTTL         time.Duration
	DefaultLanguage    string
}

// Load reads an optional .env file and then the process environment.
// A missing or unreadable env file is not an error; explicit environment
// variables always win over file contents.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// godotenv does not override already-set variables
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		RedirectURI:        getEnv("REDIRECT_URI", "http://localhost:3000/api/strava/callback"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GithubURL:          os.Getenv("GITHUB_URL"),
		SessionTTL:         getDurationEnv("SESSION_TTL", 12*time.Hour),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StravaClientID == "" {
		return fmt.Errorf("STRAVA_CLIENT_ID is required")
	}
	if c.StravaClientSecret == "" {
		return fmt.Errorf("STRAVA_CLIENT_SECRET is required")
	}
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
