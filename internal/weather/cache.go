package weather

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"assistant/internal/domain"
)

// NopCache disables weather response caching.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.WeatherReport, bool) { return nil, false }
func (NopCache) Set(context.Context, string, *domain.WeatherReport)        {}

// MemoryCache is an in-process TTL cache for weather reports.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	report  domain.WeatherReport
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, city string) (*domain.WeatherReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey(city)]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, cacheKey(city))
		return nil, false
	}
	report := e.report
	return &report, true
}

func (c *MemoryCache) Set(_ context.Context, city string, report *domain.WeatherReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(city)] = memoryEntry{report: *report, expires: c.now().Add(c.ttl)}
}

// RedisCache shares weather reports across processes via Redis. All cache
// failures degrade to a miss; the turn never fails on the cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, city string) (*domain.WeatherReport, bool) {
	data, err := c.client.Get(ctx, cacheKey(city)).Bytes()
	if err != nil {
		return nil, false
	}
	var report domain.WeatherReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (c *RedisCache) Set(ctx context.Context, city string, report *domain.WeatherReport) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(city), data, c.ttl).Err()
}

func cacheKey(city string) string { return "weather:" + city }
