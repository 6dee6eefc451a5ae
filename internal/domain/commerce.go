package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrUpstream = errors.New("upstream request failed")

// ListQuery holds the query parameters sent to the commerce platform.
// Zero values are omitted from the request.
type ListQuery struct {
	Status string
	Limit  int
	Order  string
}

// Order is an order record exactly as the commerce platform returned it.
// The gateway does not own its shape; accessors read the few fields it needs.
type Order struct {
	Raw json.RawMessage
}

func (o Order) MarshalJSON() ([]byte, error) {
	if len(o.Raw) == 0 {
		return []byte("null"), nil
	}
	return o.Raw, nil
}

func (o Order) CreatedAt() string {
	return gjson.GetBytes(o.Raw, "created_at").String()
}

// TotalPrice parses total_price, which the platform sends as a decimal string.
func (o Order) TotalPrice() (float64, bool) {
	return parseAmount(gjson.GetBytes(o.Raw, "total_price"))
}

func (o Order) LineItemCount() int {
	return int(gjson.GetBytes(o.Raw, "line_items.#").Int())
}

// Customer is a customer record as returned by the commerce platform.
type Customer struct {
	Raw json.RawMessage
}

func (c Customer) MarshalJSON() ([]byte, error) {
	if len(c.Raw) == 0 {
		return []byte("null"), nil
	}
	return c.Raw, nil
}

// ID returns the raw JSON of the id field, or nil when absent.
func (c Customer) ID() json.RawMessage {
	r := gjson.GetBytes(c.Raw, "id")
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

func (c Customer) OrdersCount() (int64, bool) {
	r := gjson.GetBytes(c.Raw, "orders_count")
	if !r.Exists() || r.Type == gjson.Null {
		return 0, false
	}
	return r.Int(), true
}

func (c Customer) LastOrderDate() (string, bool) {
	r := gjson.GetBytes(c.Raw, "last_order_date")
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	return r.String(), true
}

func (c Customer) TotalSpent() (float64, bool) {
	return parseAmount(gjson.GetBytes(c.Raw, "total_spent"))
}

// parseAmount accepts a JSON number or a whole decimal string. Trailing text
// such as "12.50 USD" is rejected on purpose; Shopify never sends it.
func parseAmount(r gjson.Result) (float64, bool) {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
