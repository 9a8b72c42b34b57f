package observability

type Metrics interface {
	ObserveSync(durMs float64, rows int, ok bool)
	ObserveHTTP(method, route string, status int, durMs float64)
	IncCacheHit()
	IncCacheMiss()
	IncCarrierCall()
	IncCarrierShortCircuit()
	IncTrackingCacheHit()
}

type Noop struct{}

func (Noop) ObserveSync(float64, int, bool)           {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
func (Noop) IncCarrierCall()                          {}
func (Noop) IncCarrierShortCircuit()                  {}
func (Noop) IncTrackingCacheHit()                     {}

func NewNoop() Metrics { return Noop{} }
