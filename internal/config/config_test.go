package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected ttl: %s", cfg.JWT.AccessTokenTTL)
	}
	if cfg.Production() {
		t.Fatal("defaults must not be production")
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("expected empty dsn, got %s", cfg.Database.DSN)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("environment: staging\nserver:\n  addr: \":9090\"\njwt:\n  secret: file-secret\n  issuer: gateway\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "staging" {
		t.Fatalf("unexpected environment: %s", cfg.Environment)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.JWT.Secret != "file-secret" || cfg.JWT.Issuer != "gateway" {
		t.Fatalf("unexpected jwt config: %+v", cfg.JWT)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTHGATE_DATABASE_DSN", "postgres://env-host/authgate")
	t.Setenv("AUTHGATE_JWT_SECRET", "env-secret")
	t.Setenv("AUTHGATE_SERVER_ADDR", ":7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "postgres://env-host/authgate" {
		t.Fatalf("env dsn not applied, got %q", cfg.Database.DSN)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("env secret not applied, got %q", cfg.JWT.Secret)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env addr not applied, got %q", cfg.Server.Addr)
	}
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Server:      ServerConfig{Addr: ":8080"},
		JWT:         JWTConfig{Secret: devSecret},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production with dev secret to fail validation")
	}

	cfg.JWT.Secret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresAddr(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{Secret: "s"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing addr to fail validation")
	}
}
