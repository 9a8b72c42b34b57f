package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenEmpty(t *testing.T) {
	b := New(0.001, 3) // refill slow enough to be irrelevant here

	require.True(t, b.Allow())
	require.True(t, b.Allow())
	require.True(t, b.Allow())
	require.False(t, b.Allow(), "bucket is empty after the burst")
}

func TestWait_SpacesRequests(t *testing.T) {
	b := New(100, 1)

	require.NoError(t, b.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond, "second token needs a refill")
}

func TestWait_HonorsContext(t *testing.T) {
	b := New(0.001, 1)
	require.NoError(t, b.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_SanitizesArguments(t *testing.T) {
	b := New(-1, 0)
	require.True(t, b.Allow())
	require.False(t, b.Allow())
}
