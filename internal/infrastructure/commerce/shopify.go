// Package commerce talks to the Shopify Admin REST API.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/ErlanBelekov/storefront-insights/internal/metrics"
	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/tidwall/gjson"
)

type Config struct {
	// Shop is the store domain, e.g. "demo.myshopify.com". A scheme or a bare
	// shop name ("demo") is accepted too.
	Shop        string
	APIVersion  string
	AccessToken string
	// APIKey and APISecret authenticate a private app when AccessToken is empty.
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

type ShopifyClient struct {
	client  *goshopify.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewShopifyClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*ShopifyClient, error) {
	logger = logger.With("component", "shopify_client")

	opts := []goshopify.Option{
		goshopify.WithVersion(cfg.APIVersion),
		goshopify.WithLogger(leveledLogger{logger}),
	}
	if httpClient != nil {
		opts = append(opts, goshopify.WithHTTPClient(httpClient))
	}

	app := goshopify.App{ApiKey: cfg.APIKey, Password: cfg.APISecret}
	client, err := goshopify.NewClient(app, shopName(cfg.Shop), cfg.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create shopify client: %w", err)
	}

	return &ShopifyClient{
		client:  client,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// shopName strips what go-shopify would otherwise double up: the scheme and
// any trailing path.
func shopName(shop string) string {
	shop = strings.TrimSpace(shop)
	if i := strings.Index(shop, "://"); i >= 0 {
		shop = shop[i+3:]
	}
	if i := strings.Index(shop, "/"); i >= 0 {
		shop = shop[:i]
	}
	return shop
}

func (c *ShopifyClient) ListOrders(ctx context.Context, q domain.ListQuery) ([]domain.Order, error) {
	raws, err := c.list(ctx, "orders", q)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, len(raws))
	for i, r := range raws {
		orders[i] = domain.Order{Raw: r}
	}
	return orders, nil
}

func (c *ShopifyClient) ListCustomers(ctx context.Context, q domain.ListQuery) ([]domain.Customer, error) {
	raws, err := c.list(ctx, "customers", q)
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, len(raws))
	for i, r := range raws {
		customers[i] = domain.Customer{Raw: r}
	}
	return customers, nil
}

// listOptions is encoded into the query string by go-shopify.
type listOptions struct {
	Status string `url:"status,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	Order  string `url:"order,omitempty"`
}

// statusCoder is implemented by go-shopify's ResponseError and the errors
// that embed it.
type statusCoder interface {
	GetStatus() int
}

// list GETs {resource}.json and returns the elements of the top-level
// array named after the resource, untouched.
func (c *ShopifyClient) list(ctx context.Context, resource string, q domain.ListQuery) (raws []json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.UpstreamDuration.WithLabelValues("shopify_"+resource, outcome).Observe(time.Since(start).Seconds())
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body := map[string]json.RawMessage{}
	opts := listOptions{Status: q.Status, Limit: q.Limit, Order: q.Order}

	if err := c.client.Get(ctx, resource+".json", &body, opts); err != nil {
		var sc statusCoder
		if errors.As(err, &sc) && sc.GetStatus() != 0 {
			c.logger.ErrorContext(ctx, "shopify returned error status",
				"resource", resource,
				"http_status", sc.GetStatus(),
				"error", err,
			)
			return nil, &StatusError{Resource: resource, StatusCode: sc.GetStatus()}
		}
		c.logger.ErrorContext(ctx, "shopify request failed", "resource", resource, "error", err)
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrUpstream, resource, err)
	}

	list := gjson.ParseBytes(body[resource])
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %s response has no %q array", domain.ErrUpstream, resource, resource)
	}

	items := list.Array()
	raws = make([]json.RawMessage, len(items))
	for i, item := range items {
		raws[i] = json.RawMessage(item.Raw)
	}
	return raws, nil
}

// StatusError is returned when Shopify answers with a non-2xx status.
type StatusError struct {
	Resource   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify %s: unexpected status %d", e.Resource, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstream }

// leveledLogger routes go-shopify's printf-style logging into slog.
type leveledLogger struct {
	l *slog.Logger
}

func (g leveledLogger) Debugf(format string, v ...any) { g.l.Debug(fmt.Sprintf(format, v...)) }
func (g leveledLogger) Infof(format string, v ...any)  { g.l.Info(fmt.Sprintf(format, v...)) }
func (g leveledLogger) Warnf(format string, v ...any)  { g.l.Warn(fmt.Sprintf(format, v...)) }
func (g leveledLogger) Errorf(format string, v ...any) { g.l.Error(fmt.Sprintf(format, v...)) }
