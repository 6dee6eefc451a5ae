// warmer keeps the narrative cache populated so forecast and churn requests
// are served from Redis instead of waiting on the model.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/storefront-insights/config"
	"github.com/ErlanBelekov/storefront-insights/internal/health"
	"github.com/ErlanBelekov/storefront-insights/internal/infrastructure/cache"
	"github.com/ErlanBelekov/storefront-insights/internal/infrastructure/commerce"
	"github.com/ErlanBelekov/storefront-insights/internal/infrastructure/narrative"
	ctxlog "github.com/ErlanBelekov/storefront-insights/internal/log"
	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	"github.com/ErlanBelekov/storefront-insights/internal/scheduler"
	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	if cfg.RedisURL == "" {
		log.Fatal("warmer: REDIS_URL is not set, there is no cache to warm")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rdb, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	logger.Info("redis connected")

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout()}

	shopify, err := commerce.NewShopifyClient(commerce.Config{
		Shop:        cfg.ShopifyURL,
		APIVersion:  cfg.ShopifyAPIVersion,
		AccessToken: cfg.ShopifyAccessToken,
		APIKey:      cfg.ShopifyAPIKey,
		APISecret:   cfg.ShopifyAPISecret,
		Timeout:     cfg.UpstreamTimeout(),
	}, httpClient, logger)
	if err != nil {
		stop()
		log.Fatalf("shopify: %v", err)
	}

	gemini, err := narrative.NewGemini(ctx, narrative.GeminiConfig{
		APIKey:  cfg.GoogleAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.UpstreamTimeout(),
	}, httpClient, logger)
	if err != nil {
		stop()
		log.Fatalf("gemini: %v", err)
	}

	narrator := cache.NewNarrativeCache(
		narrative.NewLimited(gemini, cfg.NarrativeRPS, cfg.NarrativeBurst),
		rdb, cfg.GeminiModel, cfg.NarrativeCacheTTL, logger,
	)
	insights := usecase.NewInsightUsecase(shopify, narrator, cfg.PromptRecordLimit)

	metrics.Register(prometheus.DefaultRegisterer)
	checker := health.NewChecker(map[string]health.Pinger{
		"redis": health.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	}, logger, prometheus.DefaultRegisterer)

	// both narratives per run, each bounded by the upstream timeout plus rate limiter wait
	warmer, err := scheduler.NewWarmer(insights, cfg.WarmSchedule, 3*cfg.UpstreamTimeout(), logger)
	if err != nil {
		stop()
		log.Fatalf("warmer: %v", err)
	}
	go warmer.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
