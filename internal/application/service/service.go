// Package service orchestrates the sync pipeline: page through upstream
// orders, enrich each with carrier tracking, replace the cache wholesale and
// mirror the result into the store when one is configured.
package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/packtrack/packtrack/internal/cache"
	"github.com/packtrack/packtrack/internal/domain"
	"github.com/packtrack/packtrack/internal/integrations/shipstation"
	"github.com/packtrack/packtrack/internal/merge"
	"github.com/packtrack/packtrack/internal/observability"
	"github.com/packtrack/packtrack/internal/pkg/pool"
	"go.uber.org/zap"
)

//go:generate mockgen -source internal/application/service/service.go -destination=internal/application/service/service_mock_test.go -package=service

type OrderSource interface {
	FetchAll(ctx context.Context) []shipstation.Order
	FetchShipmentsByOrder(ctx context.Context, orderID int64) ([]shipstation.Shipment, error)
}

type CarrierClient interface {
	Track(ctx context.Context, trackingNumber string) domain.TrackingRecord
	TrackingURL(trackingNumber string) string
}

type Store interface {
	UpsertAll(ctx context.Context, rows []domain.MergedRecord) error
	UpsertOne(ctx context.Context, trackingNumber string, tr domain.TrackingRecord) error
	LoadAll(ctx context.Context) ([]domain.MergedRecord, error)
}

type EventPublisher interface {
	PublishTrackingUpdated(ctx context.Context, orderID string, tr domain.TrackingRecord)
}

type Deps struct {
	Source  OrderSource
	Carrier CarrierClient
	Results *cache.ResultCache
	Tracks  *cache.TrackingCache
	Store   Store          // nil when persistence is disabled
	Events  EventPublisher // nil when the producer is disabled
	Logger  *zap.Logger
	Metrics observability.Metrics

	OrderTTL time.Duration
	StaleMax time.Duration
	Workers  int
}

type Service struct {
	d  Deps
	sf singleflight.Group
}

func New(d Deps) *Service {
	if d.Metrics == nil {
		d.Metrics = observability.Noop{}
	}
	if d.Workers < 1 {
		d.Workers = 1
	}
	return &Service{d: d}
}

// WarmStart seeds the in-memory snapshot from the store so reads work
// immediately after a restart. The snapshot is not marked fresh, so the
// first read still triggers a sync.
func (s *Service) WarmStart(ctx context.Context) {
	if s.d.Store == nil {
		return
	}
	rows, err := s.d.Store.LoadAll(ctx)
	if err != nil {
		s.d.Logger.Warn("warm start skipped", zap.Error(err))
		return
	}
	s.d.Results.Restore(rows)
	s.d.Logger.Info("warm start loaded rows from store", zap.Int("rows", len(rows)))
}

// Orders returns one page of the merged snapshot, refreshing it first when
// stale. Concurrent callers against a stale cache share a single refresh.
func (s *Service) Orders(ctx context.Context, page, limit int) (cache.PageResult, ListStats, error) {
	st, err := s.ensureFresh(ctx)
	if err != nil {
		return cache.PageResult{}, st, err
	}
	rows, at := s.d.Results.Snapshot()
	s.degradeStale(rows)
	st.LastSync = at
	return cache.Paginate(rows, page, limit), st, nil
}

// Trackable returns one page of the trackable-only subset.
func (s *Service) Trackable(ctx context.Context, page, limit int) (cache.PageResult, ListStats, error) {
	st, err := s.ensureFresh(ctx)
	if err != nil {
		return cache.PageResult{}, st, err
	}
	rows, at := s.d.Results.Snapshot()
	s.degradeStale(rows)

	trackable := rows[:0]
	for _, r := range rows {
		if r.Trackable() {
			trackable = append(trackable, r)
		}
	}
	st.LastSync = at
	return cache.Paginate(trackable, page, limit), st, nil
}

// SyncOrders forces a refresh regardless of cache age. Concurrent forced
// syncs still collapse into one upstream pass.
func (s *Service) SyncOrders(ctx context.Context) (int, error) {
	v, err, _ := s.sf.Do("sync", func() (any, error) {
		return s.sync(context.WithoutCancel(ctx))
	})
	n, _ := v.(int)
	return n, err
}

// RefreshOne bypasses the order-cache TTL for a single tracking number: it
// queries the carrier directly, upserts the one matching cached row (and
// store row), and returns the fresh record.
func (s *Service) RefreshOne(ctx context.Context, trackingNumber string) (domain.TrackingRecord, error) {
	if trackingNumber == "" {
		return domain.TrackingRecord{}, errors.New("trackingNumber is required")
	}

	s.d.Tracks.Drop(trackingNumber)
	rec := s.d.Carrier.Track(ctx, trackingNumber)
	s.observeTrack(rec)
	s.d.Tracks.Set(rec)

	orderID := ""
	rows, _ := s.d.Results.Snapshot()
	for _, r := range rows {
		if r.TrackingNumber == trackingNumber {
			orderID = r.OrderID
			break
		}
	}

	if s.d.Results.UpsertOne(trackingNumber, rec) && s.d.Store != nil {
		if err := s.d.Store.UpsertOne(ctx, trackingNumber, rec); err != nil {
			s.d.Logger.Warn("single refresh not persisted", zap.Error(err))
		}
	}
	if s.d.Events != nil {
		s.d.Events.PublishTrackingUpdated(ctx, orderID, rec)
	}
	return rec, nil
}

// TrackingURL exposes the carrier's public deep link for the redirect route.
func (s *Service) TrackingURL(trackingNumber string) string {
	return s.d.Carrier.TrackingURL(trackingNumber)
}

func (s *Service) Health() HealthInfo {
	_, at := s.d.Results.Snapshot()
	return HealthInfo{
		OK:        true,
		CacheSize: s.d.Results.Len(),
		LastSync:  at,
	}
}

// ensureFresh is the read-path freshness gate. At most one refresh runs
// system-wide; callers arriving while one is in flight attach to it and
// receive the same eventual result.
func (s *Service) ensureFresh(ctx context.Context) (ListStats, error) {
	if s.d.Results.Fresh(s.d.OrderTTL) {
		s.d.Metrics.IncCacheHit()
		return ListStats{Source: SourceCache}, nil
	}
	s.d.Metrics.IncCacheMiss()

	start := time.Now()
	_, err, _ := s.sf.Do("sync", func() (any, error) {
		// Detached from the caller: a started refresh runs to completion
		// even if the triggering request goes away.
		return s.sync(context.WithoutCancel(ctx))
	})
	st := ListStats{
		Source: SourceSync,
		SyncMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	return st, err
}

func (s *Service) sync(ctx context.Context) (int, error) {
	start := time.Now()
	orders := s.d.Source.FetchAll(ctx)

	rows := make([]domain.MergedRecord, len(orders))
	p := pool.New(s.d.Workers)
	for i := range orders {
		i := i
		o := orders[i]
		p.Submit(func() {
			rows[i] = s.enrich(ctx, o)
		})
	}
	p.Close()
	p.Wait()

	s.d.Results.Replace(rows)

	if s.d.Store != nil {
		if err := s.d.Store.UpsertAll(ctx, rows); err != nil {
			// Persistence never blocks serving from memory.
			s.d.Logger.Warn("sync result not persisted", zap.Error(err))
		}
	}

	durMs := float64(time.Since(start).Microseconds()) / 1000.0
	s.d.Metrics.ObserveSync(durMs, len(rows), true)
	s.d.Logger.Info("sync complete",
		zap.Int("rows", len(rows)),
		zap.Float64("dur_ms", durMs),
	)
	return len(rows), nil
}

// enrich joins one upstream order with its tracking result, consulting the
// per-number cache before the carrier.
func (s *Service) enrich(ctx context.Context, o shipstation.Order) domain.MergedRecord {
	ord := merge.NormalizeOrder(o)

	num := merge.ResolveTrackingNumber(ctx, o, s.d.Source)
	if num == "" {
		return merge.Merge(ord, domain.NoTrackingRecord())
	}

	if rec, ok := s.d.Tracks.Get(num); ok {
		s.d.Metrics.IncTrackingCacheHit()
		return merge.Merge(ord, rec)
	}

	rec := s.d.Carrier.Track(ctx, num)
	s.observeTrack(rec)
	s.d.Tracks.Set(rec)

	if s.d.Events != nil && !rec.IsError {
		s.d.Events.PublishTrackingUpdated(ctx, ord.OrderID, rec)
	}
	return merge.Merge(ord, rec)
}

func (s *Service) observeTrack(rec domain.TrackingRecord) {
	if rec.Status == domain.StatusPreTransit.Display() {
		s.d.Metrics.IncCarrierShortCircuit()
		return
	}
	s.d.Metrics.IncCarrierCall()
}

// degradeStale downgrades carrier fields preserved from an old sync once
// they pass the trust bound. Delivered is terminal and never degraded.
func (s *Service) degradeStale(rows []domain.MergedRecord) {
	if s.d.StaleMax <= 0 {
		return
	}
	for i := range rows {
		r := &rows[i]
		if !r.Trackable() || r.Delivered || r.LastUpdated.IsZero() {
			continue
		}
		if time.Since(r.LastUpdated) > s.d.StaleMax {
			r.Status = domain.StatusPendingUpdate.Display()
			r.Location = ""
			r.ExpectedDelivery = "--"
		}
	}
}
