package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port default mismatch: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.Env != "development" {
		t.Errorf("Env default mismatch: got %q, want %q", cfg.Env, "development")
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver default mismatch: got %q, want %q", cfg.DBDriver, "sqlite")
	}
	if cfg.JWTExpiryHours != 168 {
		t.Errorf("JWTExpiryHours default mismatch: got %d, want 168", cfg.JWTExpiryHours)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected 2 default CORS origins, got %d", len(cfg.CORSAllowedOrigins))
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/todonest")
	t.Setenv("JWT_EXPIRY_HOURS", "24")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_QUERY_TIMEOUT_SECONDS", "10")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port mismatch: got %q, want %q", cfg.Port, "9090")
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver mismatch: got %q, want %q", cfg.DBDriver, "postgres")
	}
	if cfg.DBDSN != "postgres://localhost/todonest" {
		t.Errorf("DBDSN mismatch: got %q", cfg.DBDSN)
	}
	if cfg.JWTExpiry() != 24*time.Hour {
		t.Errorf("JWTExpiry mismatch: got %v, want 24h", cfg.JWTExpiry())
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORS origins mismatch: got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.DBQueryTimeout != 10*time.Second {
		t.Errorf("DBQueryTimeout mismatch: got %v", cfg.DBQueryTimeout)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")

	cfg := Load()
	if cfg.JWTExpiryHours != 168 {
		t.Errorf("Expected default expiry on bad value, got %d", cfg.JWTExpiryHours)
	}
}
