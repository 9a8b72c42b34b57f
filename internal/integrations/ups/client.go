// Package ups resolves tracking numbers against the carrier's OAuth-protected
// tracking API. Lookups never fail upward: every error path degrades to a
// sentinel TrackingRecord so order listing keeps working.
package ups

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/packtrack/packtrack/internal/config"
	"github.com/packtrack/packtrack/internal/domain"
	"github.com/packtrack/packtrack/internal/pkg/breaker"
	"github.com/packtrack/packtrack/internal/pkg/ratelimit"
	"go.uber.org/zap"
)

const trackingPrefix = "1Z"

// IsTrackingNumber is the cheap format check applied before any network call.
// Numbers that don't match the carrier's prefix are label-created shipments
// another system printed; querying them would only burn rate-limit budget.
func IsTrackingNumber(s string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(s)), trackingPrefix)
}

type Client struct {
	cfg     config.Carrier
	httpc   *http.Client
	tokens  *tokenSource
	limiter *ratelimit.Bucket
	brk     *breaker.Breaker
	logger  *zap.Logger
}

func New(cfg config.Carrier, limiter *ratelimit.Bucket, brk *breaker.Breaker, logger *zap.Logger) *Client {
	httpc := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:     cfg,
		httpc:   httpc,
		tokens:  newTokenSource(cfg, httpc),
		limiter: limiter,
		brk:     brk,
		logger:  logger,
	}
}

// TrackingURL is the deep link to the carrier's public tracking page.
func (c *Client) TrackingURL(trackingNumber string) string {
	return c.cfg.PublicURL + url.QueryEscape(trackingNumber)
}

type trackResponse struct {
	TrackResponse struct {
		Shipment []struct {
			Package []struct {
				Activity []struct {
					Status struct {
						Description string `json:"description"`
					} `json:"status"`
					Location struct {
						Address struct {
							City          string `json:"city"`
							StateProvince string `json:"stateProvince"`
						} `json:"address"`
					} `json:"location"`
					Date string `json:"date"`
					Time string `json:"time"`
				} `json:"activity"`
				DeliveryDate []struct {
					Type string `json:"type"`
					Date string `json:"date"`
				} `json:"deliveryDate"`
			} `json:"package"`
		} `json:"shipment"`
	} `json:"trackResponse"`
}

// Track resolves one tracking number. Non-carrier-format numbers short-circuit
// to the pre-transit sentinel without a network call; every failure (breaker
// open, auth, timeout, bad body) returns the "Pending Update" sentinel.
func (c *Client) Track(ctx context.Context, trackingNumber string) domain.TrackingRecord {
	trackingURL := c.TrackingURL(trackingNumber)

	if !IsTrackingNumber(trackingNumber) {
		return domain.PreTransitRecord(trackingNumber, trackingURL)
	}

	if err := c.brk.Allow(); err != nil {
		c.logger.Debug("carrier breaker open, skipping lookup",
			zap.String("tracking_number", trackingNumber),
		)
		return domain.PendingUpdateRecord(trackingNumber, trackingURL)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PendingUpdateRecord(trackingNumber, trackingURL)
	}

	rec, err := c.fetch(ctx, trackingNumber, trackingURL)
	if err != nil {
		c.brk.Failure()
		c.logger.Warn("tracking lookup degraded to sentinel",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return domain.PendingUpdateRecord(trackingNumber, trackingURL)
	}
	c.brk.Success()
	return rec
}

func (c *Client) fetch(ctx context.Context, trackingNumber, trackingURL string) (domain.TrackingRecord, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return domain.TrackingRecord{}, err
	}

	resp, err := c.doTrackRequest(ctx, trackingNumber, tok)
	if err != nil {
		return domain.TrackingRecord{}, fmt.Errorf("%w: %v", domain.ErrTrackingFetch, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Token rejected before its advertised expiry: re-auth once.
		_ = resp.Body.Close()
		c.tokens.Invalidate()
		if tok, err = c.tokens.Token(ctx); err != nil {
			return domain.TrackingRecord{}, err
		}
		if resp, err = c.doTrackRequest(ctx, trackingNumber, tok); err != nil {
			return domain.TrackingRecord{}, fmt.Errorf("%w: %v", domain.ErrTrackingFetch, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return domain.TrackingRecord{}, fmt.Errorf("%w: http %d", domain.ErrTrackingFetch, resp.StatusCode)
	}

	var tr trackResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return domain.TrackingRecord{}, fmt.Errorf("%w: decode: %v", domain.ErrTrackingFetch, err)
	}

	return c.parse(tr, trackingNumber, trackingURL), nil
}

func (c *Client) doTrackRequest(ctx context.Context, trackingNumber, token string) (*http.Response, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/api/track/v1/details/" + url.PathEscape(trackingNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("transId", correlationID())
	req.Header.Set("transactionSrc", "packtrack")
	req.Header.Set("Accept", "application/json")

	return c.httpc.Do(req)
}

func (c *Client) parse(tr trackResponse, trackingNumber, trackingURL string) domain.TrackingRecord {
	rec := domain.TrackingRecord{
		TrackingNumber:   trackingNumber,
		Status:           domain.StatusUnknown.Display(),
		ExpectedDelivery: "--",
		LastUpdated:      time.Now().UTC(),
		TrackingURL:      trackingURL,
	}

	if len(tr.TrackResponse.Shipment) == 0 || len(tr.TrackResponse.Shipment[0].Package) == 0 {
		return rec
	}
	pkg := tr.TrackResponse.Shipment[0].Package[0]

	// activity[0] is the carrier's most recent scan.
	if len(pkg.Activity) > 0 {
		act := pkg.Activity[0]
		if act.Status.Description != "" {
			rec.Status = act.Status.Description
		}
		rec.Location = joinLocation(act.Location.Address.City, act.Location.Address.StateProvince)
	}
	rec.Delivered = domain.Delivered(rec.Status)

	if len(pkg.DeliveryDate) > 0 {
		if d := formatCompactDate(pkg.DeliveryDate[0].Date); d != "" {
			rec.ExpectedDelivery = d
		}
	}
	return rec
}

// formatCompactDate turns the carrier's "20240521" into "May 21, 2024".
func formatCompactDate(s string) string {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func joinLocation(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}

func correlationID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
