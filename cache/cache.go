// Package cache keeps generated variants close to the student-facing endpoints.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"exam-assembly-server/logger"
	"exam-assembly-server/models"
)

// VariantCache stores the generated variants of an exam by exam id.
type VariantCache interface {
	// Get returns the cached variants and whether they were present.
	Get(ctx context.Context, examID string) ([]models.Variant, bool, error)
	Set(ctx context.Context, examID string, variants []models.Variant) error
	Invalidate(ctx context.Context, examID string) error
	Close() error
}

const keyPrefix = "exam:variants:"

// Key returns the redis key holding an exam's variants.
func Key(examID string) string {
	return keyPrefix + examID
}

// redisClient is the part of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

type redisVariantCache struct {
	log *logger.Logger
	rdb redisClient
	ttl time.Duration
}

func newRedisVariantCache(rdb redisClient, ttl time.Duration, log *logger.Logger) *redisVariantCache {
	return &redisVariantCache{
		log: log.With("service", "RedisVariantCache"),
		rdb: rdb,
		ttl: ttl,
	}
}

// NewRedisVariantCache connects to redis and checks the connection before returning.
func NewRedisVariantCache(ctx context.Context, addr, password string, db int, ttl time.Duration, log *logger.Logger) (VariantCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisVariantCache(rdb, ttl, log), nil
}

func (c *redisVariantCache) Get(ctx context.Context, examID string) ([]models.Variant, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(examID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", Key(examID), err)
	}
	variants, err := Decode(raw)
	if err != nil {
		// a corrupt entry is dropped so the next read falls through to the store
		c.log.Warn("Dropping undecodable cache entry", "exam_id", examID, "error", err)
		_ = c.rdb.Del(ctx, Key(examID)).Err()
		return nil, false, nil
	}
	return variants, true, nil
}

func (c *redisVariantCache) Set(ctx context.Context, examID string, variants []models.Variant) error {
	raw, err := Encode(variants)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, Key(examID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(examID), err)
	}
	return nil
}

func (c *redisVariantCache) Invalidate(ctx context.Context, examID string) error {
	if err := c.rdb.Del(ctx, Key(examID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", Key(examID), err)
	}
	return nil
}

func (c *redisVariantCache) Close() error {
	return c.rdb.Close()
}

// Encode serialises variants for storage.
func Encode(variants []models.Variant) ([]byte, error) {
	raw, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variants: %w", err)
	}
	return raw, nil
}

// Decode reverses Encode.
func Decode(raw []byte) ([]models.Variant, error) {
	var variants []models.Variant
	if err := json.Unmarshal(raw, &variants); err != nil {
		return nil, fmt.Errorf("failed to decode variants: %w", err)
	}
	return variants, nil
}

type noopVariantCache struct{}

// NewNoop returns a cache that stores nothing. Every Get misses.
func NewNoop() VariantCache {
	return noopVariantCache{}
}

func (noopVariantCache) Get(context.Context, string) ([]models.Variant, bool, error) {
	return nil, false, nil
}
func (noopVariantCache) Set(context.Context, string, []models.Variant) error { return nil }
func (noopVariantCache) Invalidate(context.Context, string) error { return nil }
func (noopVariantCache) Close() error { return nil }
