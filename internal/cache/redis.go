package cache

import (
	"context"
	"fmt"
	"time"

	"catering-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Analytics cache keys
const (
	DashboardKeyFmt    = "analytics:dashboard:%s:%s"
	MonthlyKeyFmt      = "analytics:monthly:%s:%s"
	TopCustomersKeyFmt = "analytics:top_customers:%d"
	ProfitKeyFmt       = "analytics:profit:%s:%s"
	analyticsPattern   = "analytics:*"
)

// DefaultTTL applies to analytics entries.
const DefaultTTL = 10 * time.Minute

var client *redis.Client

// Init initializes the Redis connection. On failure the client stays nil and
// every helper below becomes a no-op.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// SetClient swaps the client; tests pass nil to run without Redis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

func Close() {
	if client != nil {
		client.Close()
	}
}

func DashboardKey(from, to string) string { return fmt.Sprintf(DashboardKeyFmt, from, to) }
func MonthlyKey(from, to string) string   { return fmt.Sprintf(MonthlyKeyFmt, from, to) }
func TopCustomersKey(limit int) string    { return fmt.Sprintf(TopCustomersKeyFmt, limit) }
func ProfitKey(from, to string) string    { return fmt.Sprintf(ProfitKeyFmt, from, to) }

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateAnalytics clears every analytics entry.
// Called after any write touching orders, bills, expenses or workforce payments.
func InvalidateAnalytics(ctx context.Context) {
	InvalidatePattern(ctx, analyticsPattern)
}

// PreWarmCallback is a function that populates a cache key
type PreWarmCallback func(ctx context.Context) ([]byte, error)

type preWarmEntry struct {
	key      string
	callback PreWarmCallback
}

var preWarmCallbacks []preWarmEntry

// RegisterPreWarm registers a callback to pre-warm a cache key
func RegisterPreWarm(key string, callback PreWarmCallback) {
	preWarmCallbacks = append(preWarmCallbacks, preWarmEntry{key: key, callback: callback})
}

// PreWarmCache fills registered keys that are not cached yet. It returns the
// number of keys written.
func PreWarmCache(ctx context.Context) int {
	if client == nil {
		return 0
	}

	warmed := 0
	for _, e := range preWarmCallbacks {
		if _, ok := GetCached(ctx, e.key); ok {
			continue
		}
		data, err := e.callback(ctx)
		if err != nil {
			continue
		}
		SetCached(ctx, e.key, data, DefaultTTL)
		warmed++
	}
	return warmed
}

// IsHealthy returns true if Redis connection is working
func IsHealthy(ctx context.Context) bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
