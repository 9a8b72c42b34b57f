package ups

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/packtrack/packtrack/internal/config"
	"github.com/packtrack/packtrack/internal/pkg/breaker"
	"github.com/packtrack/packtrack/internal/pkg/ratelimit"
)

type carrierStub struct {
	tokenCalls int64
	trackCalls int64

	trackStatus int
	rejectFirst bool // answer 401 on the first track call

	payload any
}

func (s *carrierStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/security/v1/oauth/token":
			atomic.AddInt64(&s.tokenCalls, 1)
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "client-id", user)
			require.Equal(t, "client-secret", pass)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "tok-123",
				"token_type":   "Bearer",
				"expires_in":   "3600",
			})

		case strings.HasPrefix(r.URL.Path, "/api/track/v1/details/"):
			n := atomic.AddInt64(&s.trackCalls, 1)
			require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			require.NotEmpty(t, r.Header.Get("transId"))

			if s.rejectFirst && n == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if s.trackStatus != 0 {
				w.WriteHeader(s.trackStatus)
				return
			}
			_ = json.NewEncoder(w).Encode(s.payload)

		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func deliveredPayload() any {
	return map[string]any{
		"trackResponse": map[string]any{
			"shipment": []any{
				map[string]any{
					"package": []any{
						map[string]any{
							"activity": []any{
								map[string]any{
									"status": map[string]any{"description": "Delivered to front door"},
									"location": map[string]any{
										"address": map[string]any{"city": "Memphis", "stateProvince": "TN"},
									},
									"date": "20250601",
									"time": "142500",
								},
								map[string]any{
									"status": map[string]any{"description": "Out For Delivery"},
								},
							},
							"deliveryDate": []any{
								map[string]any{"type": "DEL", "date": "20250601"},
							},
						},
					},
				},
			},
		},
	}
}

func newTestClient(t *testing.T, baseURL string, brkCfg config.Breaker) *Client {
	cfg := config.Carrier{
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		PublicURL:    "https://www.ups.com/track?tracknum=",
		Timeout:      2 * time.Second,
		TokenMargin:  time.Minute,
		RatePerSec:   1000,
		RateBurst:    1000,
	}
	if brkCfg.Threshold == 0 {
		brkCfg = config.Breaker{Threshold: 100, OpenTimeout: time.Minute, MaxHalfOpen: 1}
	}
	return New(cfg, ratelimit.New(cfg.RatePerSec, cfg.RateBurst), breaker.New(brkCfg), zaptest.NewLogger(t))
}

func TestIsTrackingNumber(t *testing.T) {
	require.True(t, IsTrackingNumber("1Z999AA10123456784"))
	require.True(t, IsTrackingNumber(" 1z999aa10123456784 "))
	require.False(t, IsTrackingNumber("92055901755477000000000000"))
	require.False(t, IsTrackingNumber(""))
}

func TestTrack_ShortCircuitsNonCarrierNumbers(t *testing.T) {
	stub := &carrierStub{payload: deliveredPayload()}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv.URL, config.Breaker{})
	rec := c.Track(context.Background(), "92055901755477000000000000")

	require.Equal(t, "Label Created", rec.Status)
	require.False(t, rec.IsError)
	require.Zero(t, atomic.LoadInt64(&stub.tokenCalls), "no auth call for non-carrier numbers")
	require.Zero(t, atomic.LoadInt64(&stub.trackCalls), "no tracking call for non-carrier numbers")
}

func TestTrack_ParsesDeliveredShipment(t *testing.T) {
	stub := &carrierStub{payload: deliveredPayload()}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv.URL, config.Breaker{})
	rec := c.Track(context.Background(), "1Z999AA10123456784")

	require.Equal(t, "Delivered to front door", rec.Status)
	require.True(t, rec.Delivered)
	require.Equal(t, "Memphis, TN", rec.Location)
	require.Equal(t, "Jun 1, 2025", rec.ExpectedDelivery)
	require.False(t, rec.IsError)
	require.Contains(t, rec.TrackingURL, "1Z999AA10123456784")
}

func TestTrack_TokenIsCached(t *testing.T) {
	stub := &carrierStub{payload: deliveredPayload()}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv.URL, config.Breaker{})
	c.Track(context.Background(), "1Z999AA10123456784")
	c.Track(context.Background(), "1Z999AA10123456785")

	require.EqualValues(t, 1, atomic.LoadInt64(&stub.tokenCalls), "second lookup reuses the token")
	require.EqualValues(t, 2, atomic.LoadInt64(&stub.trackCalls))
}

func TestTrack_ReauthenticatesOn401(t *testing.T) {
	stub := &carrierStub{payload: deliveredPayload(), rejectFirst: true}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv.URL, config.Breaker{})
	rec := c.Track(context.Background(), "1Z999AA10123456784")

	require.False(t, rec.IsError)
	require.EqualValues(t, 2, atomic.LoadInt64(&stub.tokenCalls), "401 forces one re-auth")
	require.EqualValues(t, 2, atomic.LoadInt64(&stub.trackCalls))
}

func TestTrack_FailureDegradesToSentinel(t *testing.T) {
	stub := &carrierStub{trackStatus: http.StatusServiceUnavailable}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv.URL, config.Breaker{})
	rec := c.Track(context.Background(), "1Z999AA10123456784")

	require.Equal(t, "Pending Update", rec.Status)
	require.True(t, rec.IsError)
	require.False(t, rec.Delivered)
}

func TestTrack_MissingCredentials(t *testing.T) {
	cfg := config.Carrier{
		BaseURL:    "http://localhost:1",
		PublicURL:  "https://www.ups.com/track?tracknum=",
		Timeout:    time.Second,
		RatePerSec: 1000,
		RateBurst:  10,
	}
	brk := breaker.New(config.Breaker{Threshold: 100, OpenTimeout: time.Minute, MaxHalfOpen: 1})
	c := New(cfg, ratelimit.New(1000, 10), brk, zaptest.NewLogger(t))

	rec := c.Track(context.Background(), "1Z999AA10123456784")
	require.Equal(t, "Pending Update", rec.Status)
	require.True(t, rec.IsError)
}

func TestTrack_BreakerOpensAfterFailures(t *testing.T) {
	stub := &carrierStub{trackStatus: http.StatusServiceUnavailable}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv.URL, config.Breaker{Threshold: 2, OpenTimeout: time.Minute, MaxHalfOpen: 1})

	c.Track(context.Background(), "1Z999AA10123456784")
	c.Track(context.Background(), "1Z999AA10123456785")
	callsAfterTwo := atomic.LoadInt64(&stub.trackCalls)

	rec := c.Track(context.Background(), "1Z999AA10123456786")
	require.Equal(t, "Pending Update", rec.Status)
	require.Equal(t, callsAfterTwo, atomic.LoadInt64(&stub.trackCalls), "open breaker skips the network")
}

func TestFormatCompactDate(t *testing.T) {
	require.Equal(t, "May 21, 2024", formatCompactDate("20240521"))
	require.Equal(t, "", formatCompactDate("not-a-date"))
	require.Equal(t, "", formatCompactDate(""))
}
