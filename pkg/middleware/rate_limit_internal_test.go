package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() *rateLimiter {
	return &rateLimiter{
		cfg: RateLimiterConfig{
			RequestsPerSecond: 1,
			Burst:             1,
			CleanupInterval:   5 * time.Millisecond,
			TTL:               time.Minute,
		},
		visitors: make(map[string]*visitor),
	}
}

func TestSweepDropsStaleVisitors(t *testing.T) {
	r := newTestLimiter()
	r.get("10.0.0.1")
	r.get("10.0.0.2")
	r.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)

	r.sweep()

	assert.NotContains(t, r.visitors, "10.0.0.1")
	assert.Contains(t, r.visitors, "10.0.0.2")
}

func TestCleanupStopsWithContext(t *testing.T) {
	r := newTestLimiter()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.cleanup(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "cleanup kept running after its context was cancelled")
	}
}
