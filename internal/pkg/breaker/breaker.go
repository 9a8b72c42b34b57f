// Package breaker is a simple circuit breaker. The carrier client uses it to
// stop hammering the tracking endpoint after a run of consecutive failures.
package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/packtrack/packtrack/internal/config"
)

var ErrOpenState = errors.New("circuit breaker is open")

type State uint8

const (
	Closed State = iota
	Open
	HalfOpen
)

type Breaker struct {
	mu           sync.Mutex
	cfg          config.Breaker
	state        State
	failCount    uint32
	lastOpenTime time.Time
	halfOpenReq  uint32
}

func New(cfg config.Breaker) *Breaker {
	return &Breaker{
		cfg:   cfg,
		state: Closed,
	}
}

// Allow returns ErrOpenState while the breaker is open. After OpenTimeout it
// transitions to half-open and lets up to MaxHalfOpen probe requests through.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil
	case Open:
		if time.Since(b.lastOpenTime) < b.cfg.OpenTimeout {
			return ErrOpenState
		}
		b.state = HalfOpen
		b.halfOpenReq = 1
		return nil
	case HalfOpen:
		if b.halfOpenReq < b.cfg.MaxHalfOpen {
			b.halfOpenReq++
			return nil
		}
		return ErrOpenState
	default:
		return nil
	}
}

func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.state = Closed
		b.failCount = 0
	case Closed:
		b.failCount = 0
	}
}

func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failCount++
		if b.failCount >= b.cfg.Threshold {
			b.state = Open
			b.lastOpenTime = time.Now()
		}
	case HalfOpen:
		b.state = Open
		b.lastOpenTime = time.Now()
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
