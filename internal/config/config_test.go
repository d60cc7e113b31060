package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("MODEL", "")
	t.Setenv("ARK_API_KEY", "")
	t.Setenv("ARK_MAX_TOKENS", "")
	t.Setenv("AI_CONTEXT_LIMIT", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected token ttl: %v", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Path != "database.db" {
		t.Fatalf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.AI.MaxTokens != 100 {
		t.Fatalf("unexpected max tokens: %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.ContextLimit != 0 {
		t.Fatalf("context limit should default to unlimited, got %d", cfg.AI.ContextLimit)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without credentials")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing SECRET_KEY")
	}
}

func TestLoadPortVariants(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
}

func TestLoadInvalidMaxTokens(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ARK_MAX_TOKENS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive ARK_MAX_TOKENS")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cfg := AIConfig{Model: "doubao-lite", APIKey: "key"}
	if !cfg.Enabled() {
		t.Fatal("expected enabled with model and api key")
	}

	cfg = AIConfig{Model: "doubao-lite"}
	if cfg.Enabled() {
		t.Fatal("expected disabled without credentials")
	}
}
