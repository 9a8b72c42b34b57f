// Package shipstation is the upstream order source: a paginated client for
// the fulfillment platform's orders and shipments listings.
package shipstation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/packtrack/packtrack/internal/config"
	"github.com/packtrack/packtrack/internal/domain"
	"go.uber.org/zap"
)

// Order is one entry of the upstream "orders" listing. The listing nests
// items and the customer name under billTo/shipTo and only sometimes embeds
// tracking data, which is why the merge stage has a fallback chain.
type Order struct {
	OrderID        int64      `json:"orderId"`
	OrderNumber    string     `json:"orderNumber"`
	OrderDate      string     `json:"orderDate"`
	ShipDate       string     `json:"shipDate"`
	OrderStatus    string     `json:"orderStatus"`
	OrderTotal     float64    `json:"orderTotal"`
	CarrierCode    string     `json:"carrierCode"`
	TrackingNumber string     `json:"trackingNumber"`
	BillTo         Party      `json:"billTo"`
	ShipTo         Party      `json:"shipTo"`
	Items          []Item     `json:"items"`
	Shipments      []Shipment `json:"shipments"`
}

// Shipment is one entry of the "shipments" listing, the only representation
// that reliably carries a tracking number.
type Shipment struct {
	ShipmentID     int64  `json:"shipmentId"`
	OrderID        int64  `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	ShipDate       string `json:"shipDate"`
	TrackingNumber string `json:"trackingNumber"`
	CarrierCode    string `json:"carrierCode"`
	ShipTo         Party  `json:"shipTo"`
}

type Party struct {
	Name string `json:"name"`
}

type Item struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Page is one page of the orders listing plus the pagination metadata
// upstream reports alongside it.
type Page struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

type shipmentsPage struct {
	Shipments []Shipment `json:"shipments"`
}

type Client struct {
	cfg    config.Fulfillment
	httpc  *http.Client
	logger *zap.Logger
}

func New(cfg config.Fulfillment, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// FetchPage issues one authenticated GET for the given page of the orders
// listing. Non-2xx responses and transport failures come back as
// domain.ErrUpstreamUnavailable; FetchAll treats that as "no more pages".
func (c *Client) FetchPage(ctx context.Context, page, pageSize int) (Page, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/orders"

	q := u.Query()
	q.Set("orderStatus", c.cfg.Status)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortBy", "OrderDate")
	q.Set("sortDir", "DESC")
	u.RawQuery = q.Encode()

	var out Page
	if err := c.get(ctx, u.String(), &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

// FetchAll pages through the orders listing starting at page 1, stopping on a
// short page or the MaxPages safety valve, with a fixed delay between pages
// to avoid upstream rate limiting. A mid-loop failure is logged and whatever
// was accumulated so far is returned, so partial sync results stay usable.
func (c *Client) FetchAll(ctx context.Context) []Order {
	pageSize := c.cfg.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	maxPages := c.cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	var all []Order
	for page := 1; page <= maxPages; page++ {
		p, err := c.FetchPage(ctx, page, pageSize)
		if err != nil {
			c.logger.Warn("orders page fetch failed, keeping partial result",
				zap.Int("page", page),
				zap.Int("accumulated", len(all)),
				zap.Error(err),
			)
			return all
		}
		all = append(all, p.Orders...)

		if len(p.Orders) < pageSize {
			break
		}
		if page == maxPages {
			c.logger.Warn("orders listing truncated at max pages",
				zap.Int("max_pages", maxPages),
				zap.Int("accumulated", len(all)),
			)
			break
		}

		select {
		case <-time.After(c.cfg.PageDelay):
		case <-ctx.Done():
			return all
		}
	}
	return all
}

// FetchShipmentsByOrder looks up the shipments of one order. The merge stage
// uses it as the last resort before the "No Tracking" sentinel.
func (c *Client) FetchShipmentsByOrder(ctx context.Context, orderID int64) ([]Shipment, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/shipments"

	q := u.Query()
	q.Set("orderId", strconv.FormatInt(orderID, 10))
	u.RawQuery = q.Encode()

	var out shipmentsPage
	if err := c.get(ctx, u.String(), &out); err != nil {
		return nil, err
	}
	return out.Shipments, nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: http %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}
