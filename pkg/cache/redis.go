package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wardenlabs/warden/pkg/engine"
)

const keyPrefix = "warden:audit:"

// Redis is the production ResultCache. Trails are stored as JSON under
// warden:audit:<fingerprint> with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis parses a redis:// URL, verifies connectivity, and returns the
// cache.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client (tests).
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get looks up a stored trail by fingerprint.
func (c *Redis) Get(ctx context.Context, fingerprint string) (*engine.AuditTrail, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var trail engine.AuditTrail
	if err := json.Unmarshal(raw, &trail); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return nil, false, nil
	}
	return &trail, true, nil
}

// Set stores the redacted trail under its fingerprint.
func (c *Redis) Set(ctx context.Context, trail *engine.AuditTrail) error {
	raw, err := json.Marshal(trail)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+trail.Fingerprint, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Redis) Close() error { return c.client.Close() }
