package cache

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisOrderCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisOrderCache(client, 5*time.Minute), mr
}

func sampleOrders(userID string) []models.Order {
	return []models.Order{
		{
			ID:     "order-2",
			UserID: userID,
			Items:  []models.OrderItem{{Name: "Scarf", Price: 200, ImageURL: "scarf.jpg", Quantity: 2}},
			Total:  450,
			Status: models.StatusPending,
		},
		{
			ID:     "order-1",
			UserID: userID,
			Items:  []models.OrderItem{{Name: "Shirt", Price: 500, ImageURL: "shirt.jpg", Quantity: 1}},
			Total:  550,
			Status: models.StatusShipped,
		},
	}
}

func TestGetAccountOrders_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	orders, err := cache.GetAccountOrders(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, orders)
}

func TestSetThenGetAccountOrders(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetAccountOrders(ctx, "user-1", sampleOrders("user-1")))
	assert.True(t, mr.Exists("orders:user-1"))

	ttl := mr.TTL("orders:user-1")
	assert.Equal(t, 5*time.Minute, ttl)

	orders, err := cache.GetAccountOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID)
	assert.Equal(t, models.StatusShipped, orders[1].Status)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
}

func TestGetAccountOrders_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("user-1"), "[{\"id\":"))

	_, err := cache.GetAccountOrders(context.Background(), "user-1")
	require.ErrorContains(t, err, "unmarshal orders failed")
}

func TestInvalidate(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.SetAccountOrders(ctx, "user-1", sampleOrders("user-1")))

	require.NoError(t, cache.Invalidate(ctx, "user-1"))
	assert.False(t, mr.Exists("orders:user-1"))

	// Deleting a missing key is not an error.
	require.NoError(t, cache.Invalidate(ctx, "user-2"))
}

func TestRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	cache := NewRedisOrderCache(client, time.Minute)
	mr.Close()

	_, err = cache.GetAccountOrders(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
