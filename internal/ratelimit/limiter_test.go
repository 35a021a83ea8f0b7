package ratelimit

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/pkg/config"
)

func TestLimiterAllowsWithinBurst(t *testing.T) {
	l := NewLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstSize: 3}, prometheus.NewRegistry())
	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("key-a").Allowed)
	}
}

func TestLimiterRejectsOverBurst(t *testing.T) {
	l := NewLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, BurstSize: 1}, prometheus.NewRegistry())
	require.True(t, l.Allow("key-a").Allowed)
	result := l.Allow("key-a")
	require.False(t, result.Allowed)
	require.Positive(t, result.RetryAfter)
}

func TestLimiterTracksKeysIndependently(t *testing.T) {
	l := NewLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, BurstSize: 1}, prometheus.NewRegistry())
	require.True(t, l.Allow("key-a").Allowed)
	require.False(t, l.Allow("key-a").Allowed)
	require.True(t, l.Allow("key-b").Allowed)
}

func TestLimiterDisabledAlwaysAllows(t *testing.T) {
	l := NewLimiter(config.RateLimitConfig{Enabled: false, RequestsPerSecond: 1, BurstSize: 1}, prometheus.NewRegistry())
	require.True(t, l.Allow("key-a").Allowed)
	require.True(t, l.Allow("key-a").Allowed)
}

func TestBucketRefillsOverTime(t *testing.T) {
	b := NewBucket(1, 1000)
	require.True(t, b.TryConsume(1))
	require.False(t, b.TryConsume(1))
	time.Sleep(10 * time.Millisecond)
	require.True(t, b.TryConsume(1))
}
