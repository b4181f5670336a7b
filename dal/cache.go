package dal

import (
	"context"
	"encoding/json"
	"errors"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by a KVStore when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// KVStore is the key/value surface the response cache needs.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisKVStore implements KVStore on go-redis.
type RedisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

// NewRedisClient connects to Redis using the application config.
func NewRedisClient(ctx context.Context, cfg *models.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

func (r *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKVStore) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

// ResponseCache stores board responses per company for a short TTL. Every
// write to a company's jobs bumps its generation, which orphans all of the
// company's cached responses at once.
type ResponseCache struct {
	kv     KVStore
	ttl    time.Duration
	logger logger.Logger
}

func NewResponseCache(kv KVStore, ttl time.Duration, log logger.Logger) *ResponseCache {
	return &ResponseCache{kv: kv, ttl: ttl, logger: log}
}

func generationKey(orgID string) string {
	return fmt.Sprintf("dispatch:%s:generation", orgID)
}

func (c *ResponseCache) generation(ctx context.Context, orgID string) (string, error) {
	gen, err := c.kv.Get(ctx, generationKey(orgID))
	if errors.Is(err, ErrCacheMiss) {
		return "0", nil
	}
	return gen, err
}

func (c *ResponseCache) responseKey(ctx context.Context, orgID, queryKey string) (string, error) {
	gen, err := c.generation(ctx, orgID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("dispatch:%s:%s:%s", orgID, gen, queryKey), nil
}

// Get returns a cached response, or nil on a miss. Cache failures are logged
// and reported as misses.
func (c *ResponseCache) Get(ctx context.Context, orgID, queryKey string) *models.DispatchResponse {
	if c == nil {
		return nil
	}
	key, err := c.responseKey(ctx, orgID, queryKey)
	if err != nil {
		c.logger.Warnf("Response cache unavailable: %v", err)
		return nil
	}
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warnf("Response cache read failed: %v", err)
		}
		return nil
	}
	var resp models.DispatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		c.logger.Warnf("Discarding undecodable cached response %s: %v", key, err)
		return nil
	}
	return &resp
}

// Set stores a response under the company's current generation.
func (c *ResponseCache) Set(ctx context.Context, orgID, queryKey string, resp *models.DispatchResponse) {
	if c == nil || resp == nil {
		return
	}
	key, err := c.responseKey(ctx, orgID, queryKey)
	if err != nil {
		c.logger.Warnf("Response cache unavailable: %v", err)
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warnf("Failed to encode response for cache: %v", err)
		return
	}
	if err := c.kv.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.Warnf("Response cache write failed: %v", err)
	}
}

// Invalidate drops every cached response of the company.
func (c *ResponseCache) Invalidate(ctx context.Context, orgID string) {
	if c == nil {
		return
	}
	if _, err := c.kv.Incr(ctx, generationKey(orgID)); err != nil {
		c.logger.Warnf("Failed to invalidate response cache for %s: %v", orgID, err)
	}
}
