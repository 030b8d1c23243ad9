package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/eventdesk")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT secrets are missing")
	}

	t.Setenv("JWT_SECRET", "secret")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_REFRESH_SECRET is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/eventdesk")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Auth.AccessExpiry != 15*time.Minute {
		t.Errorf("expected default access expiry 15m, got %s", cfg.Auth.AccessExpiry)
	}
	if cfg.Auth.RefreshExpiry != 168*time.Hour {
		t.Errorf("expected default refresh expiry 168h, got %s", cfg.Auth.RefreshExpiry)
	}
	if cfg.Auth.MasterKey != "" {
		t.Errorf("expected master key disabled by default")
	}
	if cfg.RateLimit.LoginPer15Minutes != 5 {
		t.Errorf("expected default login limit 5, got %d", cfg.RateLimit.LoginPer15Minutes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/eventdesk")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("MASTER_KEY", "break-glass")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Auth.AccessExpiry != 30*time.Minute {
		t.Errorf("expected access expiry 30m, got %s", cfg.Auth.AccessExpiry)
	}
	if cfg.Auth.MasterKey != "break-glass" {
		t.Errorf("master key not loaded")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.value); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "error", Format: "json"})
	if logger.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %s", logger.GetLevel())
	}
}
