package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "narrative:"

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NarrativeCache remembers model output per model and prompt. Identical order
// or customer data produces an identical prompt, so repeated requests skip the
// model until the entry expires. Redis failures never fail a request.
type NarrativeCache struct {
	next   generator
	rdb    *redis.Client
	model  string
	ttl    time.Duration
	logger *slog.Logger
}

// NewNarrativeCache caches next's output. model names the model behind next
// so switching models never serves the previous model's text.
func NewNarrativeCache(next generator, rdb *redis.Client, model string, ttl time.Duration, logger *slog.Logger) *NarrativeCache {
	return &NarrativeCache{
		next:   next,
		rdb:    rdb,
		model:  model,
		ttl:    ttl,
		logger: logger.With("component", "narrative_cache"),
	}
}

func (c *NarrativeCache) Generate(ctx context.Context, prompt string) (string, error) {
	key := Key(c.model, prompt)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.NarrativeCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
		metrics.NarrativeCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.NarrativeCacheTotal.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "narrative cache get", "error", err)
	}

	text, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.rdb.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "narrative cache set", "error", err)
	}
	return text, nil
}

// Key is the Redis key for a prompt sent to model.
func Key(model, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return keyPrefix + model + ":" + hex.EncodeToString(sum[:])
}
