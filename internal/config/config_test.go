package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"TODO_CONFIG", "TODO_ADDR", "PORT", "DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER",
	"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "BCRYPT_COST", "CORS_ORIGIN", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.AccessTokenTTL.Duration != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 1h", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL.Duration != 30*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want 720h", cfg.RefreshTokenTTL)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("defaults without a secret must not validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGIN", "http://a.test/, http://b.test")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.AccessTokenTTL.Duration != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://a.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.BcryptCost != 4 {
		t.Errorf("BcryptCost = %d, want 4", cfg.BcryptCost)
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.toml")
	content := `
addr = ":7000"
db_driver = "postgres"
db_dsn = "postgres://localhost/todo"
jwt_secret = "from-file"
access_token_ttl = "30m"
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.DBDriver != "postgres" || cfg.LogLevel != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("env must override file, got %q", cfg.JWTSecret)
	}
	if cfg.AccessTokenTTL.Duration != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 30m", cfg.AccessTokenTTL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", nil, "jwt_secret"},
		{"bad driver", map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "oracle"}, "db_driver"},
		{"bad ttl", map[string]string{"JWT_SECRET": "x", "ACCESS_TOKEN_TTL": "soon"}, "ACCESS_TOKEN_TTL"},
		{"negative ttl", map[string]string{"JWT_SECRET": "x", "REFRESH_TOKEN_TTL": "-1h"}, "refresh_token_ttl"},
		{"bad cost", map[string]string{"JWT_SECRET": "x", "BCRYPT_COST": "99"}, "bcrypt_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestOnlyMissingSecret(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	if !OnlyMissingSecret(err) {
		t.Errorf("expected only the secret to be missing, got %v", err)
	}

	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load("")
	if OnlyMissingSecret(err) {
		t.Errorf("driver error must not be ignored: %v", err)
	}
	if OnlyMissingSecret(nil) {
		t.Error("nil is not a missing secret")
	}
}
