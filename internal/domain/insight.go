package domain

import "encoding/json"

// SalesPoint is one order reduced to what the forecast prompt needs.
type SalesPoint struct {
	Date       string  `json:"date"`
	TotalPrice float64 `json:"totalPrice"`
}

// CustomerActivity is one customer reduced to what the churn prompt needs.
// Fields the platform did not send are left out of the prompt.
type CustomerActivity struct {
	ID            json.RawMessage `json:"id,omitempty"`
	OrdersCount   *int64          `json:"ordersCount,omitempty"`
	LastOrderDate *string         `json:"lastOrderDate,omitempty"`
	TotalSpent    float64         `json:"totalSpent"`
}
