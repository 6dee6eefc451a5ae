package config_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/storefront-insights/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/insights")
	t.Setenv("JWT_SECRET", "config-test-secret-at-least-32-chars")
	t.Setenv("SHOPIFY_URL", "demo-store.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_test")
	t.Setenv("GOOGLE_CLOUD_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPrefix != "/api/v1" {
		t.Errorf("APIPrefix = %q, want /api/v1", cfg.APIPrefix)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.PromptRecordLimit != 250 {
		t.Errorf("PromptRecordLimit = %d, want 250", cfg.PromptRecordLimit)
	}
	if cfg.NarrativeCacheTTL != 15*time.Minute {
		t.Errorf("NarrativeCacheTTL = %v, want 15m", cfg.NarrativeCacheTTL)
	}
	if cfg.UpstreamTimeout() != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 30s", cfg.UpstreamTimeout())
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info", cfg.SlogLevel())
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for empty JWT_SECRET")
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "too-short")

	_, err := config.Load()
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("want invalid config error, got %v", err)
	}
}

func TestLoad_ShopifyCredentialsRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when neither access token nor api key/secret are set")
	}

	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET_KEY", "secret")
	if _, err := config.Load(); err != nil {
		t.Fatalf("api key + secret should be accepted: %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}
