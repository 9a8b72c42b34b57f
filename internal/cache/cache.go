// Package cache holds the merged order/tracking rows the read endpoints
// serve from, plus a separate TTL cache of per-number carrier results.
package cache

import (
	"sync"
	"time"

	"github.com/packtrack/packtrack/internal/domain"
)

// ResultCache is the process-wide snapshot of merged rows. It is replaced
// wholesale on sync; the only in-place mutation is the targeted upsert a
// single-tracking refresh performs.
type ResultCache struct {
	mu        sync.RWMutex
	fetchedAt time.Time
	rows      []domain.MergedRecord
}

func NewResultCache() *ResultCache {
	return &ResultCache{}
}

// Fresh reports whether the snapshot is younger than ttl.
func (c *ResultCache) Fresh(ttl time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() {
		return false
	}
	return time.Since(c.fetchedAt) < ttl
}

// Replace swaps in a new snapshot and stamps it.
func (c *ResultCache) Replace(rows []domain.MergedRecord) {
	c.mu.Lock()
	c.rows = rows
	c.fetchedAt = time.Now().UTC()
	c.mu.Unlock()
}

// Restore seeds the snapshot from the persistent store at boot without
// marking it fresh, so the first read still triggers a sync.
func (c *ResultCache) Restore(rows []domain.MergedRecord) {
	c.mu.Lock()
	if len(c.rows) == 0 {
		c.rows = rows
	}
	c.mu.Unlock()
}

// Snapshot returns the cached rows and the time they were fetched. The
// returned slice is a copy; callers may filter it freely.
func (c *ResultCache) Snapshot() ([]domain.MergedRecord, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows := make([]domain.MergedRecord, len(c.rows))
	copy(rows, c.rows)
	return rows, c.fetchedAt
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// UpsertOne replaces the tracking fields of the single row matching the
// tracking number. All other rows are untouched. Returns false when no row
// matches.
func (c *ResultCache) UpsertOne(trackingNumber string, tr domain.TrackingRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].TrackingNumber == trackingNumber {
			c.rows[i].TrackingRecord = tr
			return true
		}
	}
	return false
}

// PageResult is one page of rows plus the metadata paginated endpoints
// return alongside it.
type PageResult struct {
	Data       []domain.MergedRecord `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
}

// Paginate is a pure slice of rows by 1-based page and limit.
// totalPages is ceil(total/limit), with the documented sentinel of 1 for an
// empty collection (never 0).
func Paginate(rows []domain.MergedRecord, page, limit int) PageResult {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	total := len(rows)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return PageResult{
		Data:       rows[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}
