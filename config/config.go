package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	APIPrefix   string `env:"API_PREFIX" envDefault:"/api/v1" validate:"required,startswith=/"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	JWTSecret   string `env:"JWT_SECRET,required"   validate:"required,min=32"`

	ShopifyURL         string `env:"SHOPIFY_URL,required" validate:"required"`
	ShopifyAccessToken string `env:"SHOPIFY_ACCESS_TOKEN"`
	ShopifyAPIKey      string `env:"SHOPIFY_API_KEY"        validate:"required_without=ShopifyAccessToken"`
	ShopifyAPISecret   string `env:"SHOPIFY_API_SECRET_KEY" validate:"required_without=ShopifyAccessToken"`
	ShopifyAPIVersion  string `env:"SHOPIFY_API_VERSION" envDefault:"2024-07" validate:"required"`

	GoogleAPIKey string `env:"GOOGLE_CLOUD_API_KEY,required" validate:"required"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash" validate:"required"`

	UpstreamTimeoutSec int `env:"UPSTREAM_TIMEOUT_SEC" envDefault:"30"  validate:"min=1,max=300"`
	PromptRecordLimit  int `env:"PROMPT_RECORD_LIMIT"  envDefault:"250" validate:"min=1,max=250"`

	NarrativeRPS   float64 `env:"NARRATIVE_RPS"   envDefault:"1" validate:"gt=0"`
	NarrativeBurst int     `env:"NARRATIVE_BURST" envDefault:"2" validate:"min=1"`

	RedisURL          string        `env:"REDIS_URL"`
	NarrativeCacheTTL time.Duration `env:"NARRATIVE_CACHE_TTL" envDefault:"15m"`
	WarmSchedule      string        `env:"WARM_SCHEDULE" envDefault:"*/15 * * * *"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if it exists; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSec) * time.Second
}
