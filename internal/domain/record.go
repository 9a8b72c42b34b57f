package domain

import "time"

// OrderRecord is one normalized order from the fulfillment platform.
// Immutable once produced; superseded wholesale on the next sync.
type OrderRecord struct {
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
	ShipDate     string `json:"shipDate"`
	CustomerName string `json:"customerName"`
	ItemSummary  string `json:"itemSummary"`
	CarrierCode  string `json:"carrierCode"`
	OrderTotal   string `json:"orderTotal"`
	OrderStatus  string `json:"orderStatus"`
}

// TrackingRecord is the result of resolving one tracking number against the
// carrier, or a sentinel when the lookup was skipped or failed.
type TrackingRecord struct {
	TrackingNumber   string    `json:"trackingNumber"`
	Status           string    `json:"status"`
	Location         string    `json:"location"`
	Delivered        bool      `json:"delivered"`
	ExpectedDelivery string    `json:"expectedDelivery"`
	LastUpdated      time.Time `json:"lastUpdated"`
	TrackingURL      string    `json:"trackingUrl"`
	IsError          bool      `json:"isError"`
}

// MergedRecord is an OrderRecord joined with its TrackingRecord, flattened
// into the single row the read endpoints return.
type MergedRecord struct {
	OrderRecord
	TrackingRecord
}

// Key identifies a merged record: the tracking number when one exists,
// otherwise the upstream order id.
func (m MergedRecord) Key() string {
	if m.TrackingNumber != "" {
		return m.TrackingNumber
	}
	return "order:" + m.OrderID
}

// Trackable reports whether the record carries a real tracking number.
func (m MergedRecord) Trackable() bool {
	return m.TrackingNumber != ""
}
