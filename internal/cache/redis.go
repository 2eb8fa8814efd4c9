package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// NewRedisOrderCache stores order lists in Redis for ttl (5 minutes when ttl <= 0).
func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
	}
}

// RedisOrderCache is an OrderCache backed by Redis. Values are JSON-encoded order lists.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// GetAccountOrders returns the cached list for userID, or ErrCacheMiss.
func (r RedisOrderCache) GetAccountOrders(ctx context.Context, userID string) ([]models.Order, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var orders []models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders failed: %w", err)
	}
	return orders, nil
}

// SetAccountOrders replaces the cached list for userID.
func (r RedisOrderCache) SetAccountOrders(ctx context.Context, userID string, orders []models.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached list for userID.
func (r RedisOrderCache) Invalidate(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("orders:%s", userID)
}
