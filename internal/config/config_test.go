package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "RESERVA_API_BASE_URL", "BOOKING_ACK_DURATION", "CORS_ALLOWED_ORIGINS", "BOOKING_TIMEZONE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.APIBaseURL != "http://localhost:4000/api" {
		t.Fatalf("expected default api base url, got %s", cfg.APIBaseURL)
	}
	if cfg.BookingAckDuration != 3500*time.Millisecond {
		t.Fatalf("expected 3.5s ack duration, got %s", cfg.BookingAckDuration)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location())
	}
	if cfg.IsProduction() {
		t.Fatal("development env should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("RESERVA_API_BASE_URL", "https://api.reserva.test/api/")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://reserva.test, ,https://www.reserva.test")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("BOOKING_TIMEZONE", "Asia/Kolkata")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "https://api.reserva.test/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.reserva.test" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 7 {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls enabled")
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production env")
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Fatalf("expected Asia/Kolkata, got %s", cfg.Location())
	}
}

func TestLocationFallsBackOnUnknownZone(t *testing.T) {
	cfg := &Config{BookingTimezone: "Nowhere/Special"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location())
	}
}
