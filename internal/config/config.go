package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Fulfillment struct {
	BaseURL   string
	APIKey    string
	APISecret string

	Status    string
	PageSize  int
	MaxPages  int
	PageDelay time.Duration
	Timeout   time.Duration
}

type Carrier struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	PublicURL    string

	Timeout     time.Duration
	TokenMargin time.Duration
	// Requests per second against the tracking endpoint.
	RatePerSec float64
	RateBurst  int
}

type Cache struct {
	OrderTTL    time.Duration
	TrackingTTL time.Duration
	FailureTTL  time.Duration
	// How long carrier fields preserved from an earlier sync stay trustworthy.
	StaleMax time.Duration
}

type Postgres struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Config struct {
	HTTPAddr      string
	EnrichWorkers int

	Fulfillment Fulfillment
	Carrier     Carrier
	Cache       Cache
	Pg          Postgres
	Kafka       Kafka
	Breaker     Breaker
	Retry       Retry
}

// Load keeps the original API and fatals on error for simplicity in main().
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr:      envDefault("HTTP_ADDR", ":8080"),
		EnrichWorkers: envInt("ENRICH_WORKERS", 10),

		Fulfillment: Fulfillment{
			BaseURL:   envDefault("SS_BASE_URL", "https://ssapi.shipstation.com"),
			APIKey:    strings.TrimSpace(os.Getenv("SS_API_KEY")),
			APISecret: strings.TrimSpace(os.Getenv("SS_API_SECRET")),
			Status:    envDefault("SS_ORDER_STATUS", "shipped"),
			PageSize:  envInt("SS_PAGE_SIZE", 50),
			MaxPages:  envInt("SS_MAX_PAGES", 20),
			PageDelay: envDurationMS("SS_PAGE_DELAY", 300*time.Millisecond),
			Timeout:   envDurationMS("SS_TIMEOUT", 10*time.Second),
		},

		Carrier: Carrier{
			BaseURL:      envDefault("UPS_BASE_URL", "https://onlinetools.ups.com"),
			ClientID:     strings.TrimSpace(os.Getenv("UPS_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("UPS_CLIENT_SECRET")),
			PublicURL:    envDefault("UPS_PUBLIC_URL", "https://www.ups.com/track?tracknum="),
			Timeout:      envDurationMS("UPS_TIMEOUT", 8*time.Second),
			TokenMargin:  envDurationMS("UPS_TOKEN_MARGIN", 5*time.Minute),
			RatePerSec:   envFloat64("UPS_RATE_PER_SEC", 1.0),
			RateBurst:    envInt("UPS_RATE_BURST", 1),
		},

		Cache: Cache{
			OrderTTL:    envDurationMS("ORDER_CACHE_TTL", 120*time.Second),
			TrackingTTL: envDurationMS("TRACKING_CACHE_TTL", 15*time.Minute),
			FailureTTL:  envDurationMS("TRACKING_FAILURE_TTL", time.Minute),
			StaleMax:    envDurationMS("TRACKING_STALE_MAX", 24*time.Hour),
		},

		Pg: Postgres{
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     strings.TrimSpace(envDefault("PG_PORT", "5432")),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  strings.TrimSpace(envDefault("PG_SSLMODE", "disable")),
		},

		Kafka: Kafka{
			Brokers: splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:   envDefault("KAFKA_TOPIC", "tracking.updated"),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 30*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 3),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 2*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate requires only the fulfillment credentials. Carrier credentials may
// be absent (every lookup then degrades to a sentinel), and Postgres/Kafka
// are optional integrations.
func (c Config) validate() error {
	var missing []string
	req := map[string]string{
		"SS_API_KEY":    c.Fulfillment.APIKey,
		"SS_API_SECRET": c.Fulfillment.APISecret,
	}
	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}

	if c.Fulfillment.PageSize <= 0 {
		log.Printf("SS_PAGE_SIZE is %d, adjusting to 1", c.Fulfillment.PageSize)
	}
	if c.Fulfillment.MaxPages <= 0 {
		log.Printf("SS_MAX_PAGES is %d, adjusting to 1", c.Fulfillment.MaxPages)
	}
	if c.Cache.OrderTTL <= 0 {
		log.Printf("ORDER_CACHE_TTL is %v, adjusting to 120s", c.Cache.OrderTTL)
	}
	if c.Carrier.RatePerSec <= 0 {
		log.Printf("UPS_RATE_PER_SEC is %v, adjusting to 1", c.Carrier.RatePerSec)
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
	}
	return nil
}

// PersistenceEnabled reports whether a Postgres store was configured.
func (c Config) PersistenceEnabled() bool {
	return c.Pg.Host != "" && c.Pg.DB != "" && c.Pg.User != ""
}

// EventsEnabled reports whether the Kafka producer should be wired.
func (c Config) EventsEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	// If it looks like a duration with units, try ParseDuration first.
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	// Otherwise treat as milliseconds.
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
