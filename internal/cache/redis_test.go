package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelpersDegradeWithoutClient(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	SetCached(ctx, "analytics:x", []byte("1"), time.Minute)
	_, ok := GetCached(ctx, "analytics:x")
	assert.False(t, ok)

	InvalidateAnalytics(ctx)
	assert.False(t, IsHealthy(ctx))
	assert.Equal(t, 0, PreWarmCache(ctx))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "analytics:dashboard:2026-01-01:2026-01-31", DashboardKey("2026-01-01", "2026-01-31"))
	assert.Equal(t, "analytics:top_customers:10", TopCustomersKey(10))
}
