package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/packtrack/packtrack/internal/domain"
)

const trackingCacheSize = 4096

// TrackingCache holds per-tracking-number carrier results so a sync pass
// doesn't re-query numbers resolved recently. Failed lookups are cached too,
// in a separate shorter-lived bucket, so a flapping carrier isn't hammered.
type TrackingCache struct {
	results  *expirable.LRU[string, domain.TrackingRecord]
	failures *expirable.LRU[string, domain.TrackingRecord]
}

func NewTrackingCache(resultTTL, failureTTL time.Duration) *TrackingCache {
	return &TrackingCache{
		results:  expirable.NewLRU[string, domain.TrackingRecord](trackingCacheSize, nil, resultTTL),
		failures: expirable.NewLRU[string, domain.TrackingRecord](trackingCacheSize, nil, failureTTL),
	}
}

func (c *TrackingCache) Get(trackingNumber string) (domain.TrackingRecord, bool) {
	if rec, ok := c.results.Get(trackingNumber); ok {
		return rec, true
	}
	return c.failures.Get(trackingNumber)
}

func (c *TrackingCache) Set(rec domain.TrackingRecord) {
	if rec.TrackingNumber == "" {
		return
	}
	if rec.IsError {
		c.failures.Add(rec.TrackingNumber, rec)
		return
	}
	c.results.Add(rec.TrackingNumber, rec)
}

// Drop removes any cached entry so the next lookup hits the carrier.
func (c *TrackingCache) Drop(trackingNumber string) {
	c.results.Remove(trackingNumber)
	c.failures.Remove(trackingNumber)
}
