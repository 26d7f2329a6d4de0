package config

import (
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-32-chars-long!!"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.ServerPort)
	}
	if cfg.JWTExpiresIn != 168*time.Hour {
		t.Fatalf("expected default token lifetime of 168h, got %s", cfg.JWTExpiresIn)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected default bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.Environment != "development" {
		t.Fatalf("expected default environment development, got %q", cfg.Environment)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		t.Fatal("expected default CORS origins")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_EXPIRES_IN", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Fatalf("port override ignored: %d", cfg.ServerPort)
	}
	if cfg.Environment != "production" {
		t.Fatalf("environment override ignored: %q", cfg.Environment)
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Fatalf("token lifetime override ignored: %s", cfg.JWTExpiresIn)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("CORS origins not parsed: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"short secret", map[string]string{"JWT_SECRET": "too-short"}},
		{"bad port", map[string]string{"JWT_SECRET": testSecret, "SERVER_PORT": "99999"}},
		{"bad environment", map[string]string{"JWT_SECRET": testSecret, "ENVIRONMENT": "staging"}},
		{"bad bcrypt cost", map[string]string{"JWT_SECRET": testSecret, "BCRYPT_ROUNDS": "99"}},
		{"unparsable duration", map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRES_IN": "never"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
