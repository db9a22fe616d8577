// Package cache keeps fetched report pages in Redis so finished games are not
// downloaded again on every run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultReportTTL keeps a final report for a full season.
const DefaultReportTTL = 365 * 24 * time.Hour

// ReportCache stores report HTML by game id.
type ReportCache interface {
	GetReport(ctx context.Context, gameID int) (string, bool, error)
	PutReport(ctx context.Context, gameID int, html string) error
}

// ReportKey is the Redis key of a game's report.
func ReportKey(gameID int) string {
	return fmt.Sprintf("report:%d", gameID)
}

// RedisCache handles report caching
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and pings the server.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores a key-value pair with TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// Lookup is Get with a miss reported as ok=false instead of an error.
func (rc *RedisCache) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := rc.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Delete removes keys
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// GetReport returns the cached report for a game.
func (rc *RedisCache) GetReport(ctx context.Context, gameID int) (string, bool, error) {
	return rc.Lookup(ctx, ReportKey(gameID))
}

// PutReport caches a game's report.
func (rc *RedisCache) PutReport(ctx context.Context, gameID int, html string) error {
	return rc.Set(ctx, ReportKey(gameID), html, rc.ttl)
}
