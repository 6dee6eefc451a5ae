package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/storefront-insights/internal/transport/http/handler"
	"github.com/ErlanBelekov/storefront-insights/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	APIPrefix  string
	JWTKey     []byte
	Production bool
	// AllowedOrigins empty means any origin.
	AllowedOrigins []string
}

func NewRouter(logger *slog.Logger, cfg RouterConfig, authHandler *handler.AuthHandler, insightHandler *handler.InsightHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.Production))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", handler.Home)

	api := r.Group(cfg.APIPrefix)
	api.POST("/login", authHandler.Login)

	// Protected insight routes
	protected := api.Group("", middleware.Auth(cfg.JWTKey))
	protected.GET("/orders", insightHandler.Orders)
	protected.GET("/customers", insightHandler.Customers)
	protected.GET("/sales-forecast", insightHandler.SalesForecast)
	protected.GET("/churn-prediction", insightHandler.ChurnPrediction)

	return r
}
