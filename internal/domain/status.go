package domain

import (
	"strings"
	"time"
)

// StatusKind classifies the origin of a TrackingRecord's status text.
// Live statuses carry whatever the carrier reported; the rest are fixed
// placeholders the pipeline produces without (or instead of) a carrier call.
type StatusKind int

const (
	StatusLive StatusKind = iota
	StatusNoTracking
	StatusPreTransit
	StatusPendingUpdate
	StatusUnknown
)

func (k StatusKind) Display() string {
	switch k {
	case StatusNoTracking:
		return "No Tracking"
	case StatusPreTransit:
		return "Label Created"
	case StatusPendingUpdate:
		return "Pending Update"
	case StatusUnknown:
		return "Unknown"
	default:
		return ""
	}
}

// Delivered reports whether a raw carrier status text means the package
// arrived. The carrier never sets a dedicated flag; "delivered" appearing
// anywhere in the text is the only signal.
func Delivered(status string) bool {
	return strings.Contains(strings.ToLower(status), "delivered")
}

// NoTrackingRecord is the sentinel for orders that expose no tracking number.
func NoTrackingRecord() TrackingRecord {
	return TrackingRecord{
		Status:           StatusNoTracking.Display(),
		ExpectedDelivery: "--",
	}
}

// PreTransitRecord is the sentinel for tracking numbers that fail the
// carrier's format check. No carrier call is ever made for these.
func PreTransitRecord(trackingNumber, trackingURL string) TrackingRecord {
	return TrackingRecord{
		TrackingNumber:   trackingNumber,
		Status:           StatusPreTransit.Display(),
		ExpectedDelivery: "Pending",
		LastUpdated:      time.Now().UTC(),
		TrackingURL:      trackingURL,
	}
}

// PendingUpdateRecord is the sentinel for a failed carrier lookup.
func PendingUpdateRecord(trackingNumber, trackingURL string) TrackingRecord {
	return TrackingRecord{
		TrackingNumber:   trackingNumber,
		Status:           StatusPendingUpdate.Display(),
		ExpectedDelivery: "--",
		LastUpdated:      time.Now().UTC(),
		TrackingURL:      trackingURL,
		IsError:          true,
	}
}
