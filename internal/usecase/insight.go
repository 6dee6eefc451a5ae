package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
)

const (
	topN = 3

	salesForecastPreamble   = "Based on the following sales data, predict the sales for the future:\n"
	churnPredictionPreamble = "Based on the following customer data, predict the churn rate:\n"
)

// CommerceGateway is the commerce platform as the usecase sees it.
type CommerceGateway interface {
	ListOrders(ctx context.Context, q domain.ListQuery) ([]domain.Order, error)
	ListCustomers(ctx context.Context, q domain.ListQuery) ([]domain.Customer, error)
}

// NarrativeGenerator turns a prompt into free text. The text is opaque to the gateway.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is what every insight operation returns. Success is false when
// there was nothing to work with, which is not an error.
type Result struct {
	Success bool
	Message string
	Data    any
}

func emptyResult(message string) *Result {
	return &Result{Success: false, Message: message, Data: []any{}}
}

type InsightUsecase struct {
	commerce    CommerceGateway
	narrator    NarrativeGenerator
	recordLimit int
}

// NewInsightUsecase wires the usecase. recordLimit caps how many records are
// fetched for, and embedded into, a single prompt.
func NewInsightUsecase(commerce CommerceGateway, narrator NarrativeGenerator, recordLimit int) *InsightUsecase {
	if recordLimit <= 0 {
		recordLimit = 250
	}
	return &InsightUsecase{
		commerce:    commerce,
		narrator:    narrator,
		recordLimit: recordLimit,
	}
}

// FetchOrders returns the orders with the most line items, at most three.
func (u *InsightUsecase) FetchOrders(ctx context.Context) (*Result, error) {
	orders, err := u.commerce.ListOrders(ctx, domain.ListQuery{
		Status: "any",
		Limit:  topN,
		Order:  "line_items_count DESC",
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].LineItemCount() > orders[j].LineItemCount()
	})
	if len(orders) > topN {
		orders = orders[:topN]
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return &Result{Success: true, Message: "Orders retrieved successfully", Data: orders}, nil
}

// FetchCustomers returns the customers with the highest total spend, at most three.
func (u *InsightUsecase) FetchCustomers(ctx context.Context) (*Result, error) {
	customers, err := u.commerce.ListCustomers(ctx, domain.ListQuery{
		Limit: topN,
		Order: "total_spent DESC",
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	sort.SliceStable(customers, func(i, j int) bool {
		a, aok := customers[i].TotalSpent()
		b, bok := customers[j].TotalSpent()
		if aok != bok {
			return aok
		}
		return a > b
	})
	if len(customers) > topN {
		customers = customers[:topN]
	}
	if customers == nil {
		customers = []domain.Customer{}
	}

	return &Result{Success: true, Message: "Customer data retrieved successfully", Data: customers}, nil
}

// FetchSalesForecast asks the model for a sales forecast over recent orders.
func (u *InsightUsecase) FetchSalesForecast(ctx context.Context) (*Result, error) {
	orders, err := u.commerce.ListOrders(ctx, domain.ListQuery{Status: "any", Limit: u.recordLimit})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return emptyResult("Orders data still empty"), nil
	}

	points := SalesPoints(orders)
	if len(points) == 0 {
		return emptyResult("No valid sales data available for forecasting"), nil
	}
	if len(points) > u.recordLimit {
		points = points[:u.recordLimit]
	}

	prompt, err := SalesForecastPrompt(points)
	if err != nil {
		return nil, err
	}

	text, err := u.narrator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate sales forecast: %w", err)
	}

	return &Result{Success: true, Message: "Sales forecast retrieved successfully", Data: text}, nil
}

// FetchChurnPrediction asks the model for a churn prediction over customers.
func (u *InsightUsecase) FetchChurnPrediction(ctx context.Context) (*Result, error) {
	customers, err := u.commerce.ListCustomers(ctx, domain.ListQuery{Limit: u.recordLimit})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if len(customers) == 0 {
		return emptyResult("Customer data still empty"), nil
	}

	activity := CustomerActivities(customers)
	if len(activity) == 0 {
		return emptyResult("No valid customer data available for churn prediction"), nil
	}
	if len(activity) > u.recordLimit {
		activity = activity[:u.recordLimit]
	}

	prompt, err := ChurnPredictionPrompt(activity)
	if err != nil {
		return nil, err
	}

	text, err := u.narrator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate churn prediction: %w", err)
	}

	return &Result{Success: true, Message: "Churn prediction retrieved successfully", Data: text}, nil
}

// SalesPoints keeps the orders whose total_price parses as a finite number.
func SalesPoints(orders []domain.Order) []domain.SalesPoint {
	points := make([]domain.SalesPoint, 0, len(orders))
	for _, o := range orders {
		price, ok := o.TotalPrice()
		if !ok {
			continue
		}
		points = append(points, domain.SalesPoint{Date: o.CreatedAt(), TotalPrice: price})
	}
	return points
}

// CustomerActivities keeps the customers whose total_spent parses as a finite number.
func CustomerActivities(customers []domain.Customer) []domain.CustomerActivity {
	out := make([]domain.CustomerActivity, 0, len(customers))
	for _, c := range customers {
		spent, ok := c.TotalSpent()
		if !ok {
			continue
		}
		a := domain.CustomerActivity{ID: c.ID(), TotalSpent: spent}
		if n, ok := c.OrdersCount(); ok {
			a.OrdersCount = &n
		}
		if d, ok := c.LastOrderDate(); ok {
			a.LastOrderDate = &d
		}
		out = append(out, a)
	}
	return out
}

func SalesForecastPrompt(points []domain.SalesPoint) (string, error) {
	return buildPrompt(salesForecastPreamble, points)
}

func ChurnPredictionPrompt(activity []domain.CustomerActivity) (string, error) {
	return buildPrompt(churnPredictionPreamble, activity)
}

func buildPrompt(preamble string, records any) (string, error) {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prompt data: %w", err)
	}
	return preamble + string(b), nil
}
