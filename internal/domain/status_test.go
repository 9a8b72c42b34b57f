package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDelivered(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected bool
	}{
		{
			name:     "delivered to front door",
			status:   "Delivered to front door",
			expected: true,
		},
		{
			name:     "uppercase",
			status:   "DELIVERED",
			expected: true,
		},
		{
			name:     "mixed case inside sentence",
			status:   "Package was dElIvErEd yesterday",
			expected: true,
		},
		{
			name:     "in transit",
			status:   "In Transit",
			expected: false,
		},
		{
			name:     "out for delivery is not delivered",
			status:   "Out For Delivery",
			expected: false,
		},
		{
			name:     "empty",
			status:   "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Delivered(tt.status))
		})
	}
}

func TestSentinelRecords(t *testing.T) {
	noTrack := NoTrackingRecord()
	require.Equal(t, "No Tracking", noTrack.Status)
	require.Empty(t, noTrack.TrackingNumber)
	require.False(t, noTrack.IsError)

	pre := PreTransitRecord("92055901755477000000000000", "https://example.com/t")
	require.Equal(t, "Label Created", pre.Status)
	require.Equal(t, "Pending", pre.ExpectedDelivery)
	require.False(t, pre.IsError)
	require.False(t, pre.LastUpdated.IsZero())

	pending := PendingUpdateRecord("1Z999AA10123456784", "https://example.com/t")
	require.Equal(t, "Pending Update", pending.Status)
	require.True(t, pending.IsError)
}

func TestMergedRecordKey(t *testing.T) {
	withTracking := MergedRecord{
		OrderRecord:    OrderRecord{OrderID: "42"},
		TrackingRecord: TrackingRecord{TrackingNumber: "1Z999AA10123456784"},
	}
	require.Equal(t, "1Z999AA10123456784", withTracking.Key())
	require.True(t, withTracking.Trackable())

	withoutTracking := MergedRecord{
		OrderRecord: OrderRecord{OrderID: "42"},
	}
	require.Equal(t, "order:42", withoutTracking.Key())
	require.False(t, withoutTracking.Trackable())
}
