package config

import (
	"strings"
	"testing"
	"time"

	"kicker-api/packages/core/services"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STALE_MATCH_AFTER", "")
	t.Setenv("MID_SEASON_JOIN_POLICY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StaleMatchAfter != 6*time.Hour {
		t.Errorf("StaleMatchAfter = %v", cfg.StaleMatchAfter)
	}
	if cfg.MidSeasonJoinPolicy != services.MidSeasonSeed {
		t.Errorf("MidSeasonJoinPolicy = %q", cfg.MidSeasonJoinPolicy)
	}
	if !cfg.AllowAllOrigins() {
		t.Errorf("expected all origins by default, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STALE_MATCH_AFTER", "90m")
	t.Setenv("MID_SEASON_JOIN_POLICY", "exclude")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.StaleMatchAfter != 90*time.Minute {
		t.Errorf("StaleMatchAfter = %v", cfg.StaleMatchAfter)
	}
	if cfg.MidSeasonJoinPolicy != services.MidSeasonExclude {
		t.Errorf("MidSeasonJoinPolicy = %q", cfg.MidSeasonJoinPolicy)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "STALE_MATCH_AFTER", "soon"},
		{"negative duration", "STALE_MATCH_AFTER", "-1h"},
		{"bad policy", "MID_SEASON_JOIN_POLICY", "sometimes"},
		{"bad port", "PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "kicker", DBName: "kicker", DBSSLMode: "disable", DBPassword: "secret"}
	dsn := cfg.DSN()
	for _, part := range []string{"host=db", "user=kicker", "password=secret", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}

	cfg.DatabaseURL = "postgres://u@h/db"
	if cfg.DSN() != "postgres://u@h/db" {
		t.Errorf("DATABASE_URL not preferred: %q", cfg.DSN())
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(&Config{LogLevel: "debug", LogFormat: "console"}); err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if _, err := NewLogger(&Config{LogLevel: "loud"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
