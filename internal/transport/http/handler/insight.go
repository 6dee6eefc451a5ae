package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
	"github.com/gin-gonic/gin"
)

type insightUsecaser interface {
	FetchOrders(ctx context.Context) (*usecase.Result, error)
	FetchCustomers(ctx context.Context) (*usecase.Result, error)
	FetchSalesForecast(ctx context.Context) (*usecase.Result, error)
	FetchChurnPrediction(ctx context.Context) (*usecase.Result, error)
}

type InsightHandler struct {
	insights insightUsecaser
	logger   *slog.Logger
}

func NewInsightHandler(insights insightUsecaser, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, logger: logger.With("component", "insight_handler")}
}

// GET /orders
func (h *InsightHandler) Orders(c *gin.Context) {
	h.serve(c, h.insights.FetchOrders, msgOrdersFailed)
}

// GET /customers
func (h *InsightHandler) Customers(c *gin.Context) {
	h.serve(c, h.insights.FetchCustomers, msgCustomersFailed)
}

// GET /sales-forecast
func (h *InsightHandler) SalesForecast(c *gin.Context) {
	h.serve(c, h.insights.FetchSalesForecast, msgForecastFailed)
}

// GET /churn-prediction
func (h *InsightHandler) ChurnPrediction(c *gin.Context) {
	h.serve(c, h.insights.FetchChurnPrediction, msgChurnFailed)
}

func (h *InsightHandler) serve(c *gin.Context, fetch func(context.Context) (*usecase.Result, error), failMsg string) {
	res, err := fetch(c.Request.Context())
	if err != nil {
		fail(c, h.logger, failMsg, err)
		return
	}
	respond(c, http.StatusOK, res.Success, res.Message, res.Data)
}

// GET /
func Home(c *gin.Context) {
	c.String(http.StatusOK, homeLivenessResponse)
}
