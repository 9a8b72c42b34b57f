package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendServerTiming(t *testing.T) {
	tests := []struct {
		name string

		metric string
		durMs  float64
		desc   string

		expected string
	}{
		{"duration only", "sync", 12.5, "", "sync;dur=12.50"},
		{"duration and description", "sync", 12.5, "cold", `sync;dur=12.50;desc="cold"`},
		{"description only", "source", 0, "cache", `source;desc="cache"`},
		{"nothing to report", "source", 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			AppendServerTiming(rr, tt.metric, tt.durMs, tt.desc)
			require.Equal(t, tt.expected, rr.Header().Get("Server-Timing"))
		})
	}
}

func TestSetIfPos(t *testing.T) {
	rr := httptest.NewRecorder()
	SetIfPos(rr, "X-Sync-Time", 0)
	require.Empty(t, rr.Header().Get("X-Sync-Time"))

	SetIfPos(rr, "X-Sync-Time", 42)
	require.Equal(t, "42.00", rr.Header().Get("X-Sync-Time"))
}

func TestInmemTotals(t *testing.T) {
	m := NewInmem(4)

	m.IncCacheHit()
	m.IncCacheHit()
	m.IncCacheMiss()
	m.IncCarrierCall()
	m.IncCarrierShortCircuit()
	m.IncTrackingCacheHit()

	hits, miss, calls, short := m.Totals()
	require.Equal(t, 2, hits)
	require.Equal(t, 1, miss)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, short)
}

func TestInmemRingBuffer(t *testing.T) {
	m := NewInmem(2)
	m.ObserveSync(10, 100, true)
	m.ObserveSync(20, 100, true)
	m.ObserveHTTP("GET", "/orders", 200, 1.5)

	require.Len(t, m.Last(), 2, "oldest observation is evicted")
}

func TestNoopIsSafe(t *testing.T) {
	m := NewNoop()
	m.ObserveSync(1, 1, true)
	m.ObserveHTTP("GET", "/", 200, 1)
	m.IncCacheHit()
	m.IncCacheMiss()
	m.IncCarrierCall()
	m.IncCarrierShortCircuit()
	m.IncTrackingCacheHit()
}
