package observability

import "sync"

// Inmem keeps the last N observations plus running totals. Enough for the
// health endpoint and tests; a real metrics backend can replace it behind
// the same interface.
type Inmem struct {
	mu     sync.Mutex
	last   []any
	max    int
	totals struct {
		cacheHits, cacheMiss          int
		carrierCalls, shortCircuits   int
		trackingCacheHits             int
		syncRuns, syncFails, syncRows int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveSync(durMs float64, rows int, ok bool) {
	m.push(struct {
		Kind  string
		DurMs float64
		Rows  int
		OK    bool
	}{"sync", durMs, rows, ok})

	m.mu.Lock()
	m.totals.syncRuns++
	m.totals.syncRows = rows
	if !ok {
		m.totals.syncFails++
	}
	m.mu.Unlock()
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(struct {
		Kind          string
		Method, Route string
		Status        int
		Dur           float64
	}{"http", method, route, status, durMs})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

func (m *Inmem) IncCarrierCall() {
	m.mu.Lock()
	m.totals.carrierCalls++
	m.mu.Unlock()
}

func (m *Inmem) IncCarrierShortCircuit() {
	m.mu.Lock()
	m.totals.shortCircuits++
	m.mu.Unlock()
}

func (m *Inmem) IncTrackingCacheHit() {
	m.mu.Lock()
	m.totals.trackingCacheHits++
	m.mu.Unlock()
}

// Totals returns a copy of the counters for tests and the health endpoint.
func (m *Inmem) Totals() (cacheHits, cacheMiss, carrierCalls, shortCircuits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss, m.totals.carrierCalls, m.totals.shortCircuits
}

func (m *Inmem) Last() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.last))
	copy(out, m.last)
	return out
}
