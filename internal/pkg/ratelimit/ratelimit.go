// Package ratelimit is a small token bucket used to space outbound carrier
// requests instead of chaining fixed delays.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Bucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

// New creates a bucket refilling at perSec tokens per second with the given
// burst capacity. The bucket starts full.
func New(perSec float64, burst int) *Bucket {
	if perSec <= 0 {
		perSec = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &Bucket{
		tokens:   float64(burst),
		capacity: float64(burst),
		perSec:   perSec,
		last:     time.Now(),
	}
}

// Wait blocks until a token is available or the context is done.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		d, ok := b.take()
		if ok {
			return nil
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Allow reports whether a token was available without blocking.
func (b *Bucket) Allow() bool {
	_, ok := b.take()
	return ok
}

// take consumes a token if one is available, otherwise returns how long to
// wait before retrying.
func (b *Bucket) take() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.perSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	missing := 1 - b.tokens
	return time.Duration(missing / b.perSec * float64(time.Second)), false
}
