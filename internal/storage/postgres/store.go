// Package postgres mirrors the merged snapshot into Postgres so a restarted
// process can serve immediately and carrier data survives order-only syncs.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/packtrack/packtrack/internal/config"
	"github.com/packtrack/packtrack/internal/domain"
	"github.com/packtrack/packtrack/internal/pkg/retry"
	"go.uber.org/zap"

	"fmt"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", domain.ErrPersistence, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", domain.ErrPersistence, err)
	}
	return pool, nil
}

type Store struct {
	pool        *pgxpool.Pool
	retryPolicy config.Retry
	logger      *zap.Logger
}

func NewStore(pool *pgxpool.Pool, retryPolicy config.Retry, logger *zap.Logger) *Store {
	return &Store{pool: pool, retryPolicy: retryPolicy, logger: logger}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS merged_orders (
	record_key        text PRIMARY KEY,
	position          integer NOT NULL DEFAULT 0,
	order_id          text NOT NULL,
	order_number      text NOT NULL DEFAULT '',
	ship_date         text NOT NULL DEFAULT '',
	customer_name     text NOT NULL DEFAULT '',
	item_summary      text NOT NULL DEFAULT '',
	carrier_code      text NOT NULL DEFAULT '',
	order_total       text NOT NULL DEFAULT '',
	order_status      text NOT NULL DEFAULT '',
	tracking_number   text NOT NULL DEFAULT '',
	status            text NOT NULL DEFAULT '',
	location          text NOT NULL DEFAULT '',
	delivered         boolean NOT NULL DEFAULT false,
	expected_delivery text NOT NULL DEFAULT '',
	last_updated      timestamptz,
	tracking_url      text NOT NULL DEFAULT '',
	is_error          boolean NOT NULL DEFAULT false,
	updated_at        timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS merged_orders_tracking_number_idx ON merged_orders (tracking_number);
`

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", domain.ErrPersistence, err)
	}
	return nil
}

// UpsertAll writes one full sync result. Rows whose tracking fields were not
// re-resolved this pass (zero LastUpdated) keep the carrier columns already
// stored, so an order-only sync never blanks out previously fetched data.
func (s *Store) UpsertAll(ctx context.Context, rows []domain.MergedRecord) error {
	return retry.Do(ctx, s.retryPolicy, func() error {
		return s.upsertAll(ctx, rows)
	})
}

func (s *Store) upsertAll(ctx context.Context, rows []domain.MergedRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	for i, r := range rows {
		if err := upsertRecord(ctx, tx, i, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrPersistence, err)
	}
	return nil
}

func upsertRecord(ctx context.Context, tx pgx.Tx, position int, r domain.MergedRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO merged_orders (record_key, position, order_id, order_number, ship_date,
			customer_name, item_summary, carrier_code, order_total, order_status,
			tracking_number, status, location, delivered, expected_delivery,
			last_updated, tracking_url, is_error, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now())
		ON CONFLICT (record_key)
		DO UPDATE SET
			position=EXCLUDED.position,
			order_id=EXCLUDED.order_id,
			order_number=EXCLUDED.order_number,
			ship_date=EXCLUDED.ship_date,
			customer_name=EXCLUDED.customer_name,
			item_summary=EXCLUDED.item_summary,
			carrier_code=EXCLUDED.carrier_code,
			order_total=EXCLUDED.order_total,
			order_status=EXCLUDED.order_status,
			tracking_number=EXCLUDED.tracking_number,
			status=CASE WHEN EXCLUDED.last_updated IS NULL THEN merged_orders.status ELSE EXCLUDED.status END,
			location=CASE WHEN EXCLUDED.last_updated IS NULL THEN merged_orders.location ELSE EXCLUDED.location END,
			delivered=CASE WHEN EXCLUDED.last_updated IS NULL THEN merged_orders.delivered ELSE EXCLUDED.delivered END,
			expected_delivery=CASE WHEN EXCLUDED.last_updated IS NULL THEN merged_orders.expected_delivery ELSE EXCLUDED.expected_delivery END,
			last_updated=COALESCE(EXCLUDED.last_updated, merged_orders.last_updated),
			tracking_url=CASE WHEN EXCLUDED.tracking_url='' THEN merged_orders.tracking_url ELSE EXCLUDED.tracking_url END,
			is_error=CASE WHEN EXCLUDED.last_updated IS NULL THEN merged_orders.is_error ELSE EXCLUDED.is_error END,
			updated_at=now()
		`, r.Key(), position, r.OrderID, r.OrderNumber, r.ShipDate,
		r.CustomerName, r.ItemSummary, r.CarrierCode, r.OrderTotal, r.OrderStatus,
		r.TrackingNumber, r.Status, r.Location, r.Delivered, r.ExpectedDelivery,
		nullableTime(r.LastUpdated), r.TrackingURL, r.IsError,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", domain.ErrPersistence, r.Key(), err)
	}
	return nil
}

// UpsertOne updates the tracking columns of the single stored row matching
// the tracking number.
func (s *Store) UpsertOne(ctx context.Context, trackingNumber string, tr domain.TrackingRecord) error {
	return retry.Do(ctx, s.retryPolicy, func() error {
		_, err := s.pool.Exec(ctx, `
			UPDATE merged_orders SET
				status=$2, location=$3, delivered=$4, expected_delivery=$5,
				last_updated=$6, tracking_url=$7, is_error=$8, updated_at=now()
			WHERE tracking_number=$1
			`, trackingNumber, tr.Status, tr.Location, tr.Delivered, tr.ExpectedDelivery,
			nullableTime(tr.LastUpdated), tr.TrackingURL, tr.IsError,
		)
		if err != nil {
			return fmt.Errorf("%w: upsert one %s: %v", domain.ErrPersistence, trackingNumber, err)
		}
		return nil
	})
}

// LoadAll reads the stored snapshot in sync order, for warm start.
func (s *Store) LoadAll(ctx context.Context) ([]domain.MergedRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT order_id, order_number, ship_date, customer_name, item_summary,
			carrier_code, order_total, order_status,
			tracking_number, status, location, delivered, expected_delivery,
			last_updated, tracking_url, is_error
		FROM merged_orders
		ORDER BY position ASC
		`)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var out []domain.MergedRecord
	for rows.Next() {
		var r domain.MergedRecord
		var lastUpdated *time.Time
		if err := rows.Scan(
			&r.OrderID, &r.OrderNumber, &r.ShipDate, &r.CustomerName, &r.ItemSummary,
			&r.CarrierCode, &r.OrderTotal, &r.OrderStatus,
			&r.TrackingNumber, &r.Status, &r.Location, &r.Delivered, &r.ExpectedDelivery,
			&lastUpdated, &r.TrackingURL, &r.IsError,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrPersistence, err)
		}
		if lastUpdated != nil {
			r.LastUpdated = *lastUpdated
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", domain.ErrPersistence, err)
	}
	return out, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
