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
	"github.com/ErlanBelekov/storefront-insights/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/storefront-insights/internal/log"
	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	httptransport "github.com/ErlanBelekov/storefront-insights/internal/transport/http"
	"github.com/ErlanBelekov/storefront-insights/internal/transport/http/handler"
	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	deps := map[string]health.Pinger{"postgres": pool}

	// Users
	userRepo := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, []byte(cfg.JWTSecret))
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Upstreams
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

	var narrator usecase.NarrativeGenerator = narrative.NewLimited(gemini, cfg.NarrativeRPS, cfg.NarrativeBurst)

	if cfg.RedisURL != "" {
		rdb, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		narrator = cache.NewNarrativeCache(narrator, rdb, cfg.GeminiModel, cfg.NarrativeCacheTTL, logger)
		deps["redis"] = health.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		logger.Info("narrative cache enabled", "ttl", cfg.NarrativeCacheTTL)
	}

	// Insights
	insightUsecase := usecase.NewInsightUsecase(shopify, narrator, cfg.PromptRecordLimit)
	insightHandler := handler.NewInsightHandler(insightUsecase, logger)

	metrics.Register(prometheus.DefaultRegisterer)
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, httptransport.RouterConfig{
			APIPrefix:  cfg.APIPrefix,
			JWTKey:     []byte(cfg.JWTSecret),
			Production: cfg.Env == "production",
		}, authHandler, insightHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
