package ups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/packtrack/packtrack/internal/config"
	"github.com/packtrack/packtrack/internal/domain"
)

// tokenSource caches the carrier bearer token and performs the OAuth
// client-credentials exchange when it expires. A safety margin is subtracted
// from the advertised lifetime so a token is never used right at the edge.
type tokenSource struct {
	cfg   config.Carrier
	httpc *http.Client

	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// The carrier reports lifetime seconds as a string.
	ExpiresIn string `json:"expires_in"`
}

func newTokenSource(cfg config.Carrier, httpc *http.Client) *tokenSource {
	return &tokenSource{cfg: cfg, httpc: httpc}
}

func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.value != "" && time.Now().Before(t.expiresAt) {
		return t.value, nil
	}

	if t.cfg.ClientID == "" || t.cfg.ClientSecret == "" {
		return "", fmt.Errorf("%w: credentials not configured", domain.ErrAuth)
	}

	u, err := url.Parse(t.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse base url: %v", domain.ErrAuth, err)
	}
	u.Path = "/security/v1/oauth/token"

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: new request: %v", domain.ErrAuth, err)
	}
	req.SetBasicAuth(t.cfg.ClientID, t.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: token endpoint http %d", domain.ErrAuth, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", domain.ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrAuth)
	}

	lifetime := time.Hour
	if secs, err := strconv.Atoi(tr.ExpiresIn); err == nil && secs > 0 {
		lifetime = time.Duration(secs) * time.Second
	}
	lifetime -= t.cfg.TokenMargin
	if lifetime < 30*time.Second {
		lifetime = 30 * time.Second
	}

	t.value = tr.AccessToken
	t.expiresAt = time.Now().Add(lifetime)
	return t.value, nil
}

// Invalidate drops the cached token so the next Token call re-authenticates.
// Called when the tracking endpoint answers 401 despite an unexpired token.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	t.value = ""
	t.expiresAt = time.Time{}
	t.mu.Unlock()
}
