package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
)

// ---- fakes ----

type fakeCommerce struct {
	orders      []domain.Order
	customers   []domain.Customer
	err         error
	lastQueries []domain.ListQuery
}

func (f *fakeCommerce) ListOrders(_ context.Context, q domain.ListQuery) ([]domain.Order, error) {
	f.lastQueries = append(f.lastQueries, q)
	return f.orders, f.err
}

func (f *fakeCommerce) ListCustomers(_ context.Context, q domain.ListQuery) ([]domain.Customer, error) {
	f.lastQueries = append(f.lastQueries, q)
	return f.customers, f.err
}

// echoGenerator returns its prompt so tests can inspect exactly what was sent.
type echoGenerator struct {
	calls int
	err   error
}

func (g *echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return prompt, nil
}

func order(raw string) domain.Order       { return domain.Order{Raw: json.RawMessage(raw)} }
func customer(raw string) domain.Customer { return domain.Customer{Raw: json.RawMessage(raw)} }

func orderWithItems(id, items int) domain.Order {
	li := make([]string, items)
	for i := range li {
		li[i] = fmt.Sprintf(`{"id":%d}`, i)
	}
	return order(fmt.Sprintf(`{"id":%d,"line_items":[%s]}`, id, strings.Join(li, ",")))
}

func idOf(t *testing.T, raw json.RawMessage) int {
	t.Helper()
	var v struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v.ID
}

// ---- FetchOrders ----

func TestFetchOrders_TopThreeByLineItemsDesc(t *testing.T) {
	fc := &fakeCommerce{orders: []domain.Order{
		orderWithItems(1, 1),
		orderWithItems(2, 5),
		orderWithItems(3, 2),
		orderWithItems(4, 7),
		orderWithItems(5, 0),
	}}
	uc := usecase.NewInsightUsecase(fc, &echoGenerator{}, 0)

	res, err := uc.FetchOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Message != "Orders retrieved successfully" {
		t.Errorf("result = %+v", res)
	}

	orders := res.Data.([]domain.Order)
	if len(orders) != 3 {
		t.Fatalf("len = %d, want 3", len(orders))
	}
	want := []int{4, 2, 3}
	for i, o := range orders {
		if got := idOf(t, o.Raw); got != want[i] {
			t.Errorf("orders[%d].id = %d, want %d", i, got, want[i])
		}
	}

	q := fc.lastQueries[0]
	if q.Status != "any" || q.Limit != 3 || q.Order != "line_items_count DESC" {
		t.Errorf("query = %+v", q)
	}
}

func TestFetchOrders_AdapterError(t *testing.T) {
	upstreamErr := fmt.Errorf("%w: boom", domain.ErrUpstream)
	uc := usecase.NewInsightUsecase(&fakeCommerce{err: upstreamErr}, &echoGenerator{}, 0)

	_, err := uc.FetchOrders(context.Background())
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("want ErrUpstream, got %v", err)
	}
}

func TestFetchOrders_EmptyIsNotNil(t *testing.T) {
	uc := usecase.NewInsightUsecase(&fakeCommerce{}, &echoGenerator{}, 0)

	res, err := uc.FetchOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := json.Marshal(res.Data)
	if string(b) != "[]" {
		t.Errorf("data = %s, want []", b)
	}
}

// ---- FetchCustomers ----

func TestFetchCustomers_TopThreeBySpendDesc(t *testing.T) {
	fc := &fakeCommerce{customers: []domain.Customer{
		customer(`{"id":1,"total_spent":"10.00"}`),
		customer(`{"id":2,"total_spent":"not-a-number"}`),
		customer(`{"id":3,"total_spent":"250.50"}`),
		customer(`{"id":4,"total_spent":"99.99"}`),
		customer(`{"id":5,"total_spent":"5"}`),
	}}
	uc := usecase.NewInsightUsecase(fc, &echoGenerator{}, 0)

	res, err := uc.FetchCustomers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "Customer data retrieved successfully" {
		t.Errorf("message = %q", res.Message)
	}

	customers := res.Data.([]domain.Customer)
	if len(customers) != 3 {
		t.Fatalf("len = %d, want 3", len(customers))
	}
	want := []int{3, 4, 1}
	for i, c := range customers {
		if got := idOf(t, c.Raw); got != want[i] {
			t.Errorf("customers[%d].id = %d, want %d", i, got, want[i])
		}
	}

	q := fc.lastQueries[0]
	if q.Limit != 3 || q.Order != "total_spent DESC" || q.Status != "" {
		t.Errorf("query = %+v", q)
	}
}

// ---- FetchSalesForecast ----

func TestFetchSalesForecast_EmptyOrders(t *testing.T) {
	gen := &echoGenerator{}
	uc := usecase.NewInsightUsecase(&fakeCommerce{}, gen, 0)

	res, err := uc.FetchSalesForecast(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Message != "Orders data still empty" {
		t.Errorf("result = %+v", res)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestFetchSalesForecast_AllPricesInvalid(t *testing.T) {
	gen := &echoGenerator{}
	fc := &fakeCommerce{orders: []domain.Order{
		order(`{"created_at":"2024-01-01T00:00:00Z","total_price":"abc"}`),
		order(`{"created_at":"2024-01-02T00:00:00Z","total_price":"n/a"}`),
	}}
	uc := usecase.NewInsightUsecase(fc, gen, 0)

	res, err := uc.FetchSalesForecast(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Message != "No valid sales data available for forecasting" {
		t.Errorf("result = %+v", res)
	}
	b, _ := json.Marshal(res.Data)
	if string(b) != "[]" {
		t.Errorf("data = %s, want []", b)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestFetchSalesForecast_EchoesPromptWithSerializedData(t *testing.T) {
	fc := &fakeCommerce{orders: []domain.Order{
		order(`{"created_at":"2024-01-01T10:00:00Z","total_price":"12.50"}`),
		order(`{"created_at":"2024-01-02T10:00:00Z","total_price":"bogus"}`),
		order(`{"created_at":"2024-01-03T10:00:00Z","total_price":"40"}`),
	}}
	uc := usecase.NewInsightUsecase(fc, &echoGenerator{}, 0)

	res, err := uc.FetchSalesForecast(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Message != "Sales forecast retrieved successfully" {
		t.Errorf("result = %+v", res)
	}

	wantData, _ := json.MarshalIndent([]domain.SalesPoint{
		{Date: "2024-01-01T10:00:00Z", TotalPrice: 12.5},
		{Date: "2024-01-03T10:00:00Z", TotalPrice: 40},
	}, "", "  ")
	wantPrompt := "Based on the following sales data, predict the sales for the future:\n" + string(wantData)

	if res.Data != wantPrompt {
		t.Errorf("data =\n%v\nwant\n%s", res.Data, wantPrompt)
	}
	if !strings.Contains(res.Data.(string), string(wantData)) {
		t.Error("prompt does not contain serialized sales data verbatim")
	}
	if fc.lastQueries[0].Status != "any" || fc.lastQueries[0].Limit != 250 {
		t.Errorf("query = %+v", fc.lastQueries[0])
	}
}

func TestFetchSalesForecast_CapsPromptRecords(t *testing.T) {
	orders := make([]domain.Order, 10)
	for i := range orders {
		orders[i] = order(fmt.Sprintf(`{"created_at":"2024-01-%02dT00:00:00Z","total_price":"%d"}`, i+1, i+1))
	}
	uc := usecase.NewInsightUsecase(&fakeCommerce{orders: orders}, &echoGenerator{}, 4)

	res, err := uc.FetchSalesForecast(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(res.Data.(string), `"totalPrice"`); got != 4 {
		t.Errorf("prompt has %d records, want 4", got)
	}
}

func TestFetchSalesForecast_GeneratorError(t *testing.T) {
	genErr := errors.New("model unavailable")
	fc := &fakeCommerce{orders: []domain.Order{order(`{"total_price":"1"}`)}}
	uc := usecase.NewInsightUsecase(fc, &echoGenerator{err: genErr}, 0)

	_, err := uc.FetchSalesForecast(context.Background())
	if !errors.Is(err, genErr) {
		t.Errorf("want wrapped genErr, got %v", err)
	}
}

// ---- FetchChurnPrediction ----

func TestFetchChurnPrediction_EmptyCustomers(t *testing.T) {
	uc := usecase.NewInsightUsecase(&fakeCommerce{}, &echoGenerator{}, 0)

	res, err := uc.FetchChurnPrediction(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Message != "Customer data still empty" {
		t.Errorf("result = %+v", res)
	}
}

func TestFetchChurnPrediction_AllSpendInvalid(t *testing.T) {
	fc := &fakeCommerce{customers: []domain.Customer{
		customer(`{"id":1,"total_spent":"x"}`),
		customer(`{"id":2}`),
	}}
	uc := usecase.NewInsightUsecase(fc, &echoGenerator{}, 0)

	res, err := uc.FetchChurnPrediction(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Message != "No valid customer data available for churn prediction" {
		t.Errorf("result = %+v", res)
	}
}

func TestFetchChurnPrediction_PromptShape(t *testing.T) {
	fc := &fakeCommerce{customers: []domain.Customer{
		customer(`{"id":11,"orders_count":4,"last_order_date":"2024-02-01","total_spent":"120.00"}`),
		customer(`{"id":12,"orders_count":1,"total_spent":"9.5"}`),
		customer(`{"id":13,"total_spent":"nope"}`),
	}}
	uc := usecase.NewInsightUsecase(fc, &echoGenerator{}, 0)

	res, err := uc.FetchChurnPrediction(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Message != "Churn prediction retrieved successfully" {
		t.Errorf("result = %+v", res)
	}

	prompt := res.Data.(string)
	const preamble = "Based on the following customer data, predict the churn rate:\n"
	if !strings.HasPrefix(prompt, preamble) {
		t.Fatalf("prompt has wrong preamble: %q", prompt)
	}

	var got []map[string]any
	if err := json.Unmarshal([]byte(strings.TrimPrefix(prompt, preamble)), &got); err != nil {
		t.Fatalf("prompt payload is not JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0]["id"] != float64(11) || got[0]["ordersCount"] != float64(4) ||
		got[0]["lastOrderDate"] != "2024-02-01" || got[0]["totalSpent"] != float64(120) {
		t.Errorf("first record = %v", got[0])
	}
	if _, ok := got[1]["lastOrderDate"]; ok {
		t.Errorf("absent lastOrderDate should be omitted, got %v", got[1])
	}
}
