package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	_, err := Load()
	if err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/ptm")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.MigrationsDir != "migrations" {
		t.Errorf("expected default migrations dir, got %s", cfg.MigrationsDir)
	}
	if !cfg.IsDev() {
		t.Error("expected IsDev to be true by default")
	}
	if cfg.AuthEnabled() {
		t.Error("expected auth to be disabled without AUTH_SECRET")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/ptm")
	os.Setenv("PORT", "9999")
	os.Setenv("ENV", "production")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.IsDev() {
		t.Error("expected IsDev to be false")
	}
}

func TestValidate_ShortAuthSecret(t *testing.T) {
	cfg := &Config{AuthSecret: "too-short", DBMaxConns: 4, DBMinConns: 1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short AUTH_SECRET")
	}
}

func TestValidate_AuthSecretOK(t *testing.T) {
	cfg := &Config{AuthSecret: "0123456789abcdef0123456789abcdef", DBMaxConns: 4, DBMinConns: 1}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("expected auth to be enabled")
	}
}

func TestValidate_ConnBounds(t *testing.T) {
	cfg := &Config{DBMaxConns: 1, DBMinConns: 4}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when min conns exceed max conns")
	}
}
