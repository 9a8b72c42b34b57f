// Package merge joins one upstream order entry with its tracking result,
// resolving the shape differences between the "orders" and "shipments"
// representations of the fulfillment platform.
package merge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/packtrack/packtrack/internal/domain"
	"github.com/packtrack/packtrack/internal/integrations/shipstation"
)

// ShipmentLookup is the secondary lookup used when an order embeds no
// tracking data at all.
type ShipmentLookup interface {
	FetchShipmentsByOrder(ctx context.Context, orderID int64) ([]shipstation.Shipment, error)
}

// NormalizeOrder flattens one upstream order entry into an OrderRecord.
// Deterministic: no external state, no randomness.
func NormalizeOrder(o shipstation.Order) domain.OrderRecord {
	name := o.ShipTo.Name
	if name == "" {
		name = o.BillTo.Name
	}
	return domain.OrderRecord{
		OrderID:      strconv.FormatInt(o.OrderID, 10),
		OrderNumber:  o.OrderNumber,
		ShipDate:     normalizeShipDate(o.ShipDate),
		CustomerName: name,
		ItemSummary:  summarizeItems(o.Items),
		CarrierCode:  o.CarrierCode,
		OrderTotal:   strconv.FormatFloat(o.OrderTotal, 'f', 2, 64),
		OrderStatus:  o.OrderStatus,
	}
}

// ResolveTrackingNumber applies the ordered fallback: embedded shipment
// array, then the top-level field, then a secondary shipments lookup, and
// finally empty (the caller substitutes the "No Tracking" sentinel). The
// chain exists because the orders listing does not reliably embed tracking
// data inline.
func ResolveTrackingNumber(ctx context.Context, o shipstation.Order, lookup ShipmentLookup) string {
	for _, s := range o.Shipments {
		if s.TrackingNumber != "" {
			return s.TrackingNumber
		}
	}
	if o.TrackingNumber != "" {
		return o.TrackingNumber
	}
	if lookup != nil {
		if shipments, err := lookup.FetchShipmentsByOrder(ctx, o.OrderID); err == nil {
			for _, s := range shipments {
				if s.TrackingNumber != "" {
					return s.TrackingNumber
				}
			}
		}
	}
	return ""
}

// Merge flattens an order and its (possibly sentinel) tracking result into
// the row the read endpoints return.
func Merge(ord domain.OrderRecord, tr domain.TrackingRecord) domain.MergedRecord {
	return domain.MergedRecord{
		OrderRecord:    ord,
		TrackingRecord: tr,
	}
}

func normalizeShipDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	if s == "" {
		return "unknown"
	}
	return s
}

func summarizeItems(items []shipstation.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		if it.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
			continue
		}
		parts = append(parts, it.Name)
	}
	return strings.Join(parts, ", ")
}
