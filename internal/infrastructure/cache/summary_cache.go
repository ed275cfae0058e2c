// Package cache provides the Redis-backed daily summary cache. The
// cache is an optimization only; every consumer must work when it is
// absent or failing.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"almacen/internal/domain/reports"
)

// Config holds cache configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultConfig returns defaults for a local Redis.
func DefaultConfig(addr string) Config {
	return Config{
		Addr: addr,
		TTL:  5 * time.Minute,
	}
}

// SummaryCache caches daily summaries in Redis. Implements both
// reports.SummaryCache and the coordinators' invalidator interface.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache client.
func New(cfg Config) *SummaryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Ping verifies connectivity.
func (c *SummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *SummaryCache) Close() error {
	return c.client.Close()
}

func dayKey(day time.Time) string {
	return "summary:day:" + day.UTC().Format("2006-01-02")
}

// GetDay returns the cached summary for a date, reporting a miss as
// (nil, false, nil).
func (c *SummaryCache) GetDay(ctx context.Context, day time.Time) (*reports.DailySummary, bool, error) {
	val, err := c.client.Get(ctx, dayKey(day)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary reports.DailySummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return &summary, true, nil
}

// SetDay stores the summary for a date.
func (c *SummaryCache) SetDay(ctx context.Context, day time.Time, s *reports.DailySummary) error {
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return c.client.Set(ctx, dayKey(day), payload, c.ttl).Err()
}

// InvalidateDay drops the cached summary after a ledger write.
func (c *SummaryCache) InvalidateDay(ctx context.Context, day time.Time) error {
	return c.client.Del(ctx, dayKey(day)).Err()
}
