package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STRAVA_CLIENT_ID", "id")
	t.Setenv("STRAVA_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RedirectURI != "http://localhost:3000/api/strava/callback" {
		t.Errorf("unexpected redirect URI %q", cfg.RedirectURI)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("unexpected model %q", cfg.GeminiModel)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("unexpected session TTL %v", cfg.SessionTTL)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("unexpected default language %q", cfg.DefaultLanguage)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_MODEL", "gemini-2.0-pro")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DEFAULT_LANGUAGE", "no")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GeminiModel != "gemini-2.0-pro" {
		t.Errorf("unexpected model %q", cfg.GeminiModel)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("unexpected session TTL %v", cfg.SessionTTL)
	}
	if cfg.DefaultLanguage != "no" {
		t.Errorf("unexpected default language %q", cfg.DefaultLanguage)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected fallback TTL, got %v", cfg.SessionTTL)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"no client id", "STRAVA_CLIENT_ID"},
		{"no client secret", "STRAVA_CLIENT_SECRET"},
		{"no api key", "GOOGLE_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			if _, err := Load(""); err == nil {
				t.Error("expected error for missing secret")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("GITHUB_URL=https://github.com/iformai/iform\n"), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	// godotenv writes to the process environment
	t.Cleanup(func() { os.Unsetenv("GITHUB_URL") })

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GithubURL != "https://github.com/iformai/iform" {
		t.Errorf("expected env file value, got %q", cfg.GithubURL)
	}
}
